// Package keybackend loads and checks the shared-secret tokens accepted by the gateway.
package keybackend

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// TokenSet is an immutable set of accepted bearer tokens.
// The zero value accepts nothing.
type TokenSet struct {
	tokens [][]byte
}

// NewTokenSet creates a set from tokens, trimming whitespace and dropping
// empty and duplicate entries.
func NewTokenSet(tokens []string) *TokenSet {
	cleaned := lo.Uniq(lo.Compact(lo.Map(tokens, func(t string, _ int) string {
		return strings.TrimSpace(t)
	})))

	return &TokenSet{
		tokens: lo.Map(cleaned, func(t string, _ int) []byte { return []byte(t) }),
	}
}

// ParseTokens splits a comma-separated secret into its tokens.
func ParseTokens(secret string) []string {
	return lo.Compact(lo.Map(strings.Split(secret, ","), func(t string, _ int) string {
		return strings.TrimSpace(t)
	}))
}

// Len returns the number of accepted tokens. Zero means authentication is not configured.
func (s *TokenSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}

// Verify returns nil when token is in the set, or an error wrapping ErrInvalidToken.
// Every configured token is compared in constant time.
func (s *TokenSet) Verify(token string) error {
	if s.Contains(token) {
		return nil
	}
	return fmt.Errorf("verify token: %w", ErrInvalidToken)
}

// Contains reports whether token is accepted.
func (s *TokenSet) Contains(token string) bool {
	if s == nil || token == "" {
		return false
	}

	presented := []byte(token)
	found := 0
	for _, t := range s.tokens {
		found |= subtle.ConstantTimeCompare(presented, t)
	}
	return found == 1
}
