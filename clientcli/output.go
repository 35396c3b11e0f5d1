package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
)

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatBuckets(w io.Writer, buckets []Bucket) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []NamedProfile, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile NamedProfile, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatUpload formats upload results as human-readable text.
// In quiet mode only the URLs are printed, one per line.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if f.Quiet {
			_, _ = fmt.Fprintln(w, r.URL)
			continue
		}
		_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s/%s (%s)\n", r.LocalPath, strings.Trim(r.Path, "/"), r.FileName, formatSize(r.Size))
		_, _ = fmt.Fprintf(w, "  URL: %s\n", r.URL)
	}
	return nil
}

// FormatBuckets formats the visible buckets as a table.
func (f *HumanFormatter) FormatBuckets(w io.Writer, buckets []Bucket) error {
	if len(buckets) == 0 {
		_, _ = fmt.Fprintln(w, "No buckets available")
		return nil
	}

	if f.Quiet {
		for i := range buckets {
			_, _ = fmt.Fprintln(w, buckets[i].Name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tALIAS\tPROVIDER\tALLOWED PATHS")
	for i := range buckets {
		b := &buckets[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, b.Alias, b.Provider, strings.Join(b.AllowedPaths, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "\n%d bucket(s)\n", len(buckets))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath string `json:"local_path"`
		Path      string `json:"path"`
		URL       string `json:"url,omitempty"`
		FileName  string `json:"file_name,omitempty"`
		Size      int64  `json:"size_bytes,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			Path:      r.Path,
			FileName:  r.FileName,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.URL = r.URL
			jr.Size = r.Size
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatBuckets formats the visible buckets as JSON.
func (f *JSONFormatter) FormatBuckets(w io.Writer, buckets []Bucket) error {
	if buckets == nil {
		buckets = []Bucket{}
	}
	return writeJSON(w, struct {
		Buckets []Bucket `json:"buckets"`
	}{Buckets: buckets})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProfileList prints one row per profile; the current one is starred.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []NamedProfile, showSecrets bool) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(w, "No profiles configured. Run 'bucketgate-cli configure <name>' to create one.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  NAME\tENDPOINT\tIDENTITY\tBUCKET\tTOKEN")
	for _, p := range profiles {
		marker := " "
		if p.Current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\n",
			marker, p.Name, p.Endpoint, orUnset(p.Identity), orUnset(p.Bucket), maskSecret(p.Token, showSecrets))
	}
	return tw.Flush()
}

// FormatProfileShow prints the settings a profile sends with each request.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, p NamedProfile, showSecrets bool) error {
	name := p.Name
	if p.Current {
		name += " (current)"
	}
	header := lo.CoalesceOrEmpty(p.IdentityHeader, DefaultIdentityHeader)

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Profile:\t%s\n", name)
	_, _ = fmt.Fprintf(tw, "Endpoint:\t%s\n", p.Endpoint)
	_, _ = fmt.Fprintf(tw, "Authorization:\tBearer %s\n", maskSecret(p.Token, showSecrets))
	_, _ = fmt.Fprintf(tw, "%s:\t%s\n", header, orUnset(p.Identity))
	_, _ = fmt.Fprintf(tw, "Bucket:\t%s\n", orUnset(p.Bucket))
	return tw.Flush()
}

type jsonProfile struct {
	Name           string `json:"name"`
	Current        bool   `json:"current"`
	Endpoint       string `json:"endpoint"`
	Token          string `json:"token"`
	Identity       string `json:"identity,omitempty"`
	IdentityHeader string `json:"identity_header"`
	Bucket         string `json:"bucket,omitempty"`
}

func toJSONProfile(p NamedProfile, showSecrets bool) jsonProfile {
	return jsonProfile{
		Name:           p.Name,
		Current:        p.Current,
		Endpoint:       p.Endpoint,
		Token:          maskSecret(p.Token, showSecrets),
		Identity:       p.Identity,
		IdentityHeader: lo.CoalesceOrEmpty(p.IdentityHeader, DefaultIdentityHeader),
		Bucket:         p.Bucket,
	}
}

// FormatProfileList writes {"profiles": [...]}.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []NamedProfile, showSecrets bool) error {
	return writeJSON(w, struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: lo.Map(profiles, func(p NamedProfile, _ int) jsonProfile { return toJSONProfile(p, showSecrets) }),
	})
}

// FormatProfileShow writes a single profile object.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, p NamedProfile, showSecrets bool) error {
	return writeJSON(w, toJSONProfile(p, showSecrets))
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
