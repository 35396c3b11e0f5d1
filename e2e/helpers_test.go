package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	var err error
	sharedTempDir, err = os.MkdirTemp("", "bucketgate-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	stopSharedMinio()
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// ServerConfig holds configuration for starting the bucketgate server.
type ServerConfig struct {
	Port          int
	Secret        string
	MaxUploadSize int64
	DefaultBucket string
	Bindings      map[string]string // binding name -> filesystem path
	Buckets       map[string]string // BUCKET_* declarations, written to an env file
}

// buildBinary compiles the bucketgate binary once per test run.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "bucketgate")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bucketgate")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the directory holding go.mod.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// createConfigFile writes the server config file.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, "port: %d\nmax_upload_size: %d\n", cfg.Port, cfg.MaxUploadSize)
	if cfg.DefaultBucket != "" {
		fmt.Fprintf(&sb, "default_bucket_config_name: %s\n", cfg.DefaultBucket)
	}
	if cfg.Secret != "" {
		fmt.Fprintf(&sb, "auth:\n  secret_key: %q\n", cfg.Secret)
	}

	if len(cfg.Bindings) > 0 {
		sb.WriteString("bindings:\n")
		for name, path := range cfg.Bindings {
			fmt.Fprintf(&sb, "  %s:\n    type: filesystem\n    path: %q\n", name, path)
		}
	}

	sb.WriteString("log:\n  level: error\n")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(sb.String()), 0o600), "write config file")

	return configPath
}

// createEnvFile writes the bucket declarations as a dotenv file.
func createEnvFile(t *testing.T, vars map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%q\n", k, vars[k])
	}

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(sb.String()), 0o600), "write env file")

	return envPath
}

// startServer starts the bucketgate binary and stops it when the test ends.
// Returns the base URL.
func startServer(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	binary := buildBinary(t)

	args := []string{
		"serve",
		"--config", createConfigFile(t, cfg),
		"--env-file", createEnvFile(t, cfg.Buckets),
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	require.NoError(t, cmd.Start(), "start server")

	t.Cleanup(func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	})

	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(t, baseURL, 10*time.Second)

	return baseURL
}

// waitForServer polls the server until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "find open port")

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close(), "close port")

	return port
}

// Upload describes one multipart upload request.
type Upload struct {
	Token     string
	Identity  string
	Bucket    string // sent as a form field
	Query     string // sent as ?bucket=
	Path      string
	FileName  string
	Overwrite bool
	Content   string
}

// doUpload posts u to /upload and returns the status and decoded JSON body.
func doUpload(t *testing.T, baseURL string, u Upload) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if u.Bucket != "" {
		require.NoError(t, mw.WriteField("bucket", u.Bucket))
	}
	if u.Path != "" {
		require.NoError(t, mw.WriteField("path", u.Path))
	}
	if u.FileName != "" {
		require.NoError(t, mw.WriteField("fileName", u.FileName))
	}
	if u.Overwrite {
		require.NoError(t, mw.WriteField("overwrite", "true"))
	}
	fw, err := mw.CreateFormFile("file", "upload.txt")
	require.NoError(t, err)
	_, err = io.WriteString(fw, u.Content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	url := baseURL + "/upload"
	if u.Query != "" {
		url += "?bucket=" + u.Query
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}
	if u.Identity != "" {
		req.Header.Set("X-User-Id", u.Identity)
	}

	return doJSON(t, req)
}

// doJSON executes req and decodes the JSON body.
func doJSON(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body), "decode response")

	return resp.StatusCode, body
}
