package domain

import "fmt"

// TokenSubject differentiates access and refresh tokens.
type TokenSubject string

const (
	TokenSubjectAccess  TokenSubject = "AccessToken"
	TokenSubjectRefresh TokenSubject = "RefreshToken"
)

// ParseTokenSubject validates a subject read from a token.
func ParseTokenSubject(s string) (TokenSubject, error) {
	switch TokenSubject(s) {
	case TokenSubjectAccess, TokenSubjectRefresh:
		return TokenSubject(s), nil
	default:
		return "", fmt.Errorf("unknown token subject %q", s)
	}
}
