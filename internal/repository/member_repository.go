package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/member-auth/internal/domain"
)

var (
	// ErrMemberNotFound is returned when no member matches a lookup.
	ErrMemberNotFound = errors.New("member not found")
	// ErrLoginNameTaken is returned when creating a member whose login name exists.
	ErrLoginNameTaken = errors.New("login name already taken")
)

const uniqueViolation = "23505"

// MemberRepository is the member directory.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	Save(ctx context.Context, member *domain.Member) error
	FindByLoginName(ctx context.Context, loginName string) (*domain.Member, error)
	FindByRefreshToken(ctx context.Context, token string) (*domain.Member, error)
	// UpdateRefreshToken overwrites the stored refresh token in a single
	// row update; nil clears it.
	UpdateRefreshToken(ctx context.Context, loginName string, token *string) error
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a Postgres-backed implementation.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, login_name, password_hash, display_name, nickname, age, role, refresh_token, created_at, updated_at`

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	const query = `
        INSERT INTO members (login_name, password_hash, display_name, nickname, age, role)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		member.LoginName,
		member.PasswordHash,
		member.DisplayName,
		member.Nickname,
		member.Age,
		member.Role.String(),
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrLoginNameTaken
		}
		return err
	}
	return nil
}

// Save persists the mutable profile fields and the refresh token. Login name
// and role are never rewritten.
func (r *memberRepository) Save(ctx context.Context, member *domain.Member) error {
	const query = `
        UPDATE members SET password_hash=$1, display_name=$2, nickname=$3, age=$4, refresh_token=$5, updated_at=NOW()
        WHERE login_name=$6
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		member.PasswordHash,
		member.DisplayName,
		member.Nickname,
		member.Age,
		member.RefreshToken,
		member.LoginName,
	).Scan(&member.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	return err
}

func (r *memberRepository) FindByLoginName(ctx context.Context, loginName string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE login_name=$1`
	return scanMember(r.pool.QueryRow(ctx, query, loginName))
}

func (r *memberRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.Member, error) {
	if token == "" {
		return nil, ErrMemberNotFound
	}
	query := `SELECT ` + memberColumns + ` FROM members WHERE refresh_token=$1`
	return scanMember(r.pool.QueryRow(ctx, query, token))
}

func (r *memberRepository) UpdateRefreshToken(ctx context.Context, loginName string, token *string) error {
	const query = `
        UPDATE members SET refresh_token=$1, updated_at=NOW()
        WHERE login_name=$2`

	cmd, err := r.pool.Exec(ctx, query, token, loginName)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (*domain.Member, error) {
	var (
		member domain.Member
		role   string
	)
	if err := row.Scan(
		&member.ID,
		&member.LoginName,
		&member.PasswordHash,
		&member.DisplayName,
		&member.Nickname,
		&member.Age,
		&role,
		&member.RefreshToken,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", member.LoginName, err)
	}
	member.Role = parsed
	return &member, nil
}
