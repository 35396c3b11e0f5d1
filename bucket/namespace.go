package bucket

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Namespace is a flat, read-only set of configuration entries.
type Namespace map[string]string

// NamespaceFromEnviron builds a Namespace from KEY=VALUE pairs as returned by os.Environ.
// Entries without '=' are ignored.
func NamespaceFromEnviron(environ []string) Namespace {
	ns := make(Namespace, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		ns[k] = v
	}
	return ns
}

// LoadNamespace reads the given dotenv files and overlays the process environment.
// Later files override earlier ones; the process environment overrides all files.
func LoadNamespace(envFiles ...string) (Namespace, error) {
	ns := Namespace{}

	for _, f := range envFiles {
		if f == "" {
			continue
		}
		values, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range values {
			ns[k] = v
		}
	}

	for k, v := range NamespaceFromEnviron(os.Environ()) {
		ns[k] = v
	}

	return ns, nil
}

// Get returns the trimmed value of key, or "" when unset.
func (n Namespace) Get(key string) string {
	return strings.TrimSpace(n[key])
}

// Has reports whether key is set to a non-blank value.
func (n Namespace) Has(key string) bool {
	return n.Get(key) != ""
}
