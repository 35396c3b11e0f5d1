package keybackend

// TokensConfig holds configuration for loading accepted tokens.
type TokensConfig struct {
	Secret string `mapstructure:"secret_key"` // Comma-separated inline tokens
	File   string `mapstructure:"token_file"` // Path to JSON file containing named tokens
}

// NewTokenSetFromConfig builds a TokenSet from both inline tokens and the
// token file (if specified). Duplicates are merged.
func NewTokenSetFromConfig(cfg TokensConfig) (*TokenSet, error) {
	tokens := ParseTokens(cfg.Secret)

	if cfg.File != "" {
		fileTokens, err := LoadTokensFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, fileTokens...)
	}

	return NewTokenSet(tokens), nil
}
