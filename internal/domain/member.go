package domain

import "time"

// Member is the authentication-relevant record of a registered board member.
// LoginName is unique and never changes; RefreshToken is the only field the
// auth pipeline mutates.
type Member struct {
	ID           string
	LoginName    string
	PasswordHash string
	DisplayName  string
	Nickname     string
	Age          int
	Role         Role
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRefreshToken reports whether token is the member's currently stored refresh token.
func (m *Member) HasRefreshToken(token string) bool {
	return m != nil && m.RefreshToken != nil && token != "" && *m.RefreshToken == token
}
