package keybackend_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTokensFromFile_ValidJSON(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, `[
		{"name": "ci", "token": "token-ci"},
		{"name": "uploader", "token": "token-up"},
		{"name": "disabled", "token": ""}
	]`)

	tokens, err := keybackend.LoadTokensFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"token-ci", "token-up"}, tokens)
}

func TestLoadTokensFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := keybackend.LoadTokensFromFile("/nonexistent/path/tokens.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tokens file")
}

func TestLoadTokensFromFile_InvalidJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "this is not json"},
		{name: "object instead of array", content: `{"name": "ci", "token": "x"}`},
		{name: "malformed json", content: `[{"name": "ci"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := keybackend.LoadTokensFromFile(writeTestFile(t, tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse tokens file")
		})
	}
}
