package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/bucketgate/clientcli"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func uploadResults() []clientcli.UploadResult {
	return []clientcli.UploadResult{
		{
			LocalPath: "local.txt",
			Path:      "docs",
			URL:       "https://cdn.example.com/docs/local.txt",
			FileName:  "local.txt",
			Size:      2048,
		},
		{
			LocalPath: "bad.txt",
			Path:      "docs",
			Err:       errors.New("server error: 409 conflict"),
		},
	}
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, uploadResults()))

		out := buf.String()
		assert.Contains(t, out, "Uploaded: local.txt -> docs/local.txt (2.0 KB)")
		assert.Contains(t, out, "URL: https://cdn.example.com/docs/local.txt")
		assert.Contains(t, out, "Error: bad.txt - server error: 409 conflict")
	})

	t.Run("quiet prints urls", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, uploadResults()[:1]))
		assert.Equal(t, "https://cdn.example.com/docs/local.txt\n", buf.String())
	})
}

func TestJSONFormatter_FormatUpload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatUpload(&buf, uploadResults()))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "https://cdn.example.com/docs/local.txt", out[0]["url"])
	assert.Nil(t, out[0]["error"])
	assert.Equal(t, "server error: 409 conflict", out[1]["error"])
	assert.Nil(t, out[1]["url"])
}

func TestFormatBuckets(t *testing.T) {
	buckets := []clientcli.Bucket{
		{Name: "main_r2", Alias: "Main", Provider: "CLOUDFLARE_R2", AllowedPaths: []string{"images", "docs"}},
		{Name: "media", Alias: "media", Provider: "AWS_S3", AllowedPaths: []string{"*"}},
	}

	t.Run("human", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatBuckets(&buf, buckets))

		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "images,docs")
		assert.Contains(t, out, "2 bucket(s)")
	})

	t.Run("human empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatBuckets(&buf, nil))
		assert.Equal(t, "No buckets available\n", buf.String())
	})

	t.Run("human quiet", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatBuckets(&buf, buckets))
		assert.Equal(t, "main_r2\nmedia\n", buf.String())
	})

	t.Run("json empty is array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatBuckets(&buf, nil))
		assert.JSONEq(t, `{"buckets":[]}`, buf.String())
	})
}

func TestFormatError(t *testing.T) {
	var human bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatError(&human, errors.New("boom")))
	assert.Equal(t, "Error: boom\n", human.String())

	var js bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&js, errors.New("boom")))
	assert.JSONEq(t, `{"error":"boom"}`, js.String())
}

func TestFormatProfiles_MasksToken(t *testing.T) {
	profiles := []clientcli.NamedProfile{
		{Name: "local", Profile: clientcli.Profile{Endpoint: "http://localhost:8787", Token: "short"}},
		{Name: "prod", Current: true, Profile: clientcli.Profile{
			Endpoint:       "https://gate.example.com",
			Token:          "abcd1234efgh5678",
			Identity:       "u1",
			IdentityHeader: "X-Email",
		}},
	}

	t.Run("human list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, false))

		out := buf.String()
		assert.Contains(t, out, "* prod")
		assert.Contains(t, out, "abcd...5678")
		assert.NotContains(t, out, "abcd1234efgh5678")
		assert.Contains(t, out, "********")
		assert.Contains(t, out, "(not set)")
	})

	t.Run("human list empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, nil, false))
		assert.Contains(t, buf.String(), "No profiles configured")
	})

	t.Run("human show masks token and names the identity header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[1], false))

		out := buf.String()
		assert.Contains(t, out, "prod (current)")
		assert.Contains(t, out, "Bearer abcd...5678")
		assert.NotContains(t, out, "abcd1234efgh5678")
		assert.Regexp(t, `X-Email:\s+u1`, out)
	})

	t.Run("human show with secrets uses default header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[0], true))

		out := buf.String()
		assert.Contains(t, out, "Bearer short")
		assert.Contains(t, out, clientcli.DefaultIdentityHeader+":")
	})

	t.Run("json list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileList(&buf, profiles, false))

		var out struct {
			Profiles []struct {
				Name           string `json:"name"`
				Token          string `json:"token"`
				Current        bool   `json:"current"`
				IdentityHeader string `json:"identity_header"`
			} `json:"profiles"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out.Profiles, 2)
		assert.False(t, out.Profiles[0].Current)
		assert.Equal(t, clientcli.DefaultIdentityHeader, out.Profiles[0].IdentityHeader)
		assert.Equal(t, "abcd...5678", out.Profiles[1].Token)
		assert.True(t, out.Profiles[1].Current)
		assert.Equal(t, "X-Email", out.Profiles[1].IdentityHeader)
	})
}
