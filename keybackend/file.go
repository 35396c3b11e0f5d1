package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// NamedToken is one entry of a token file.
type NamedToken struct {
	Name  string `json:"name" mapstructure:"name"`
	Token string `json:"token" mapstructure:"token"`
}

// LoadTokensFromFile loads shared-secret tokens from a JSON file.
// The file should contain an array of named tokens:
//
//	[
//	  {"name": "ci", "token": "c2VjcmV0MQ..."},
//	  {"name": "uploader", "token": "another_token"}
//	]
//
// Entries with an empty token are skipped. Names are informational only.
func LoadTokensFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}

	var entries []NamedToken
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tokens file: %w", err)
	}

	tokens := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Token != "" {
			tokens = append(tokens, e.Token)
		}
	}

	return tokens, nil
}
