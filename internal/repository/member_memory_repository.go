package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/member-auth/internal/domain"
)

// memoryMemberRepository keeps members in process memory. Refresh tokens are
// indexed for exact-match lookup.
type memoryMemberRepository struct {
	mu        sync.RWMutex
	byLogin   map[string]*domain.Member
	byRefresh map[string]string
	now       func() time.Time
}

// NewMemoryMemberRepository returns an in-memory directory, used when no
// Postgres DSN is configured and in tests.
func NewMemoryMemberRepository() MemberRepository {
	return &memoryMemberRepository{
		byLogin:   make(map[string]*domain.Member),
		byRefresh: make(map[string]string),
		now:       time.Now,
	}
}

func (r *memoryMemberRepository) Create(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byLogin[member.LoginName]; exists {
		return ErrLoginNameTaken
	}
	now := r.now()
	member.ID = uuid.NewString()
	member.CreatedAt = now
	member.UpdatedAt = now

	stored := cloneMember(member)
	r.byLogin[member.LoginName] = stored
	if stored.RefreshToken != nil {
		r.byRefresh[*stored.RefreshToken] = stored.LoginName
	}
	return nil
}

func (r *memoryMemberRepository) Save(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byLogin[member.LoginName]
	if !ok {
		return ErrMemberNotFound
	}
	stored.PasswordHash = member.PasswordHash
	stored.DisplayName = member.DisplayName
	stored.Nickname = member.Nickname
	stored.Age = member.Age
	r.setRefreshLocked(stored, member.RefreshToken)
	stored.UpdatedAt = r.now()
	member.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memoryMemberRepository) FindByLoginName(_ context.Context, loginName string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byLogin[loginName]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return cloneMember(stored), nil
}

func (r *memoryMemberRepository) FindByRefreshToken(_ context.Context, token string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loginName, ok := r.byRefresh[token]
	if !ok || token == "" {
		return nil, ErrMemberNotFound
	}
	return cloneMember(r.byLogin[loginName]), nil
}

func (r *memoryMemberRepository) UpdateRefreshToken(_ context.Context, loginName string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byLogin[loginName]
	if !ok {
		return ErrMemberNotFound
	}
	r.setRefreshLocked(stored, token)
	stored.UpdatedAt = r.now()
	return nil
}

func (r *memoryMemberRepository) setRefreshLocked(stored *domain.Member, token *string) {
	if stored.RefreshToken != nil {
		delete(r.byRefresh, *stored.RefreshToken)
	}
	if token == nil {
		stored.RefreshToken = nil
		return
	}
	value := *token
	stored.RefreshToken = &value
	r.byRefresh[value] = stored.LoginName
}

func cloneMember(m *domain.Member) *domain.Member {
	out := *m
	if m.RefreshToken != nil {
		token := *m.RefreshToken
		out.RefreshToken = &token
	}
	return &out
}
