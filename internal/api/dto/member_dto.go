package dto

import (
	"time"

	"github.com/spec-kit/member-auth/internal/domain"
)

// SignupRequest payload for self-registration.
type SignupRequest struct {
	LoginName   string `json:"loginName"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Nickname    string `json:"nickname"`
	Age         int    `json:"age"`
}

// MemberResponse is the public view of a member; it never carries the
// password hash or refresh token.
type MemberResponse struct {
	ID          string      `json:"id"`
	LoginName   string      `json:"loginName"`
	DisplayName string      `json:"displayName"`
	Nickname    string      `json:"nickname"`
	Age         int         `json:"age"`
	Role        domain.Role `json:"role"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// NewMemberResponse maps a domain member.
func NewMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:          m.ID,
		LoginName:   m.LoginName,
		DisplayName: m.DisplayName,
		Nickname:    m.Nickname,
		Age:         m.Age,
		Role:        m.Role,
		CreatedAt:   m.CreatedAt,
	}
}
