package keybackend_test

import (
	"testing"

	"github.com/sagarc03/bucketgate/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenSetFromConfig_InlineOnly(t *testing.T) {
	set, err := keybackend.NewTokenSetFromConfig(keybackend.TokensConfig{Secret: "secret1,secret2"})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("secret1"))
}

func TestNewTokenSetFromConfig_MergesFile(t *testing.T) {
	path := writeTestFile(t, `[{"name": "ci", "token": "from-file"}, {"name": "dup", "token": "secret1"}]`)

	set, err := keybackend.NewTokenSetFromConfig(keybackend.TokensConfig{Secret: "secret1", File: path})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("from-file"))
	assert.True(t, set.Contains("secret1"))
}

func TestNewTokenSetFromConfig_Empty(t *testing.T) {
	set, err := keybackend.NewTokenSetFromConfig(keybackend.TokensConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestNewTokenSetFromConfig_BadFile(t *testing.T) {
	_, err := keybackend.NewTokenSetFromConfig(keybackend.TokensConfig{File: "/nonexistent/tokens.json"})
	assert.Error(t, err)
}
