package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/member-auth/internal/observability"
	"github.com/spec-kit/member-auth/internal/repository"
	apperrors "github.com/spec-kit/member-auth/pkg/util"
)

// Outcome is the single result of running the filter on a request.
type Outcome int

const (
	// OutcomePassThrough skips all auth logic (login path).
	OutcomePassThrough Outcome = iota + 1
	// OutcomeShortCircuit answers the request directly; downstream is not invoked.
	OutcomeShortCircuit
	// OutcomeContinueAuthenticated forwards the request with a principal attached.
	OutcomeContinueAuthenticated
	// OutcomeContinueAnonymous forwards the request without identity.
	OutcomeContinueAnonymous
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassThrough:
		return "pass_through"
	case OutcomeShortCircuit:
		return "short_circuit"
	case OutcomeContinueAuthenticated:
		return "continue_authenticated"
	case OutcomeContinueAnonymous:
		return "continue_anonymous"
	default:
		return "unknown"
	}
}

// Request carries what the filter reads from an inbound request. Token
// fields hold raw header values, with or without the Bearer prefix.
type Request struct {
	Path         string
	AccessToken  string
	RefreshToken string
}

// Decision is the filter's verdict. ReissuedAccessToken is set only on a
// successful reissue; Principal only on OutcomeContinueAuthenticated.
type Decision struct {
	Outcome             Outcome
	Principal           *Principal
	ReissuedAccessToken string
}

// FilterConfig holds the filter's collaborators. All fields except Logger and
// Metrics are required.
type FilterConfig struct {
	Tokens        *TokenManager
	Refresh       *RefreshStore
	Members       MemberFinder
	AccessHeader  string
	RefreshHeader string
	LoginPath     string
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// RequestAuthFilter decides per request between reissuing an access token,
// attaching an identity, or continuing anonymously.
type RequestAuthFilter struct {
	tokens        *TokenManager
	refresh       *RefreshStore
	members       MemberFinder
	accessHeader  string
	refreshHeader string
	loginPath     string
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewRequestAuthFilter constructs the filter. Its configuration is fixed for
// its lifetime.
func NewRequestAuthFilter(cfg FilterConfig) (*RequestAuthFilter, error) {
	switch {
	case cfg.Tokens == nil:
		return nil, errors.New("auth filter: token manager required")
	case cfg.Refresh == nil:
		return nil, errors.New("auth filter: refresh store required")
	case cfg.Members == nil:
		return nil, errors.New("auth filter: member finder required")
	case cfg.AccessHeader == "" || cfg.RefreshHeader == "":
		return nil, errors.New("auth filter: header names required")
	case cfg.LoginPath == "":
		return nil, errors.New("auth filter: login path required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestAuthFilter{
		tokens:        cfg.Tokens,
		refresh:       cfg.Refresh,
		members:       cfg.Members,
		accessHeader:  cfg.AccessHeader,
		refreshHeader: cfg.RefreshHeader,
		loginPath:     cfg.LoginPath,
		logger:        logger,
		metrics:       cfg.Metrics,
	}, nil
}

// Evaluate runs the state machine. States are checked in order and the first
// match decides the outcome.
func (f *RequestAuthFilter) Evaluate(ctx context.Context, req Request) Decision {
	if req.Path == f.loginPath {
		return Decision{Outcome: OutcomePassThrough}
	}

	if refreshToken := StripBearer(req.RefreshToken); refreshToken != "" {
		if _, err := f.tokens.Verify(refreshToken); err == nil {
			return f.reissue(ctx, refreshToken)
		}
	}

	return f.checkAccess(ctx, StripBearer(req.AccessToken))
}

func (f *RequestAuthFilter) reissue(ctx context.Context, refreshToken string) Decision {
	member, found, err := f.refresh.FindByToken(ctx, refreshToken)
	if err != nil {
		f.logger.Error("refresh token lookup failed", zap.Error(err))
		return Decision{Outcome: OutcomeShortCircuit}
	}
	if !found {
		f.logger.Info("refresh token not recognized")
		return Decision{Outcome: OutcomeShortCircuit}
	}

	accessToken, err := f.tokens.CreateAccessToken(member.LoginName)
	if err != nil {
		f.logger.Error("reissue access token", zap.String("login_name", member.LoginName), zap.Error(err))
		return Decision{Outcome: OutcomeShortCircuit}
	}

	f.logger.Info("access token reissued", zap.String("login_name", member.LoginName))
	return Decision{Outcome: OutcomeShortCircuit, ReissuedAccessToken: accessToken}
}

func (f *RequestAuthFilter) checkAccess(ctx context.Context, accessToken string) Decision {
	anonymous := Decision{Outcome: OutcomeContinueAnonymous}
	if accessToken == "" {
		return anonymous
	}
	if _, err := f.tokens.Verify(accessToken); err != nil {
		f.logger.Debug("access token rejected", zap.Error(err))
		return anonymous
	}
	loginName, ok := f.tokens.ExtractLoginName(accessToken)
	if !ok {
		return anonymous
	}

	member, err := f.members.FindByLoginName(ctx, loginName)
	if err != nil {
		if !errors.Is(err, repository.ErrMemberNotFound) {
			f.logger.Error("member lookup failed", zap.String("login_name", loginName), zap.Error(err))
		}
		return anonymous
	}
	return Decision{Outcome: OutcomeContinueAuthenticated, Principal: newPrincipal(member)}
}

// Handle adapts Evaluate to fiber.
func (f *RequestAuthFilter) Handle(c *fiber.Ctx) error {
	decision := f.Evaluate(c.UserContext(), Request{
		Path:         c.Path(),
		AccessToken:  c.Get(f.accessHeader),
		RefreshToken: c.Get(f.refreshHeader),
	})
	f.metrics.RecordAuthOutcome(decision.Outcome.String())

	switch decision.Outcome {
	case OutcomeShortCircuit:
		if decision.ReissuedAccessToken == "" {
			return apperrors.NewUnauthorized("refresh token not recognized")
		}
		c.Set(f.accessHeader, decision.ReissuedAccessToken)
		return c.SendStatus(fiber.StatusOK)
	case OutcomeContinueAuthenticated:
		attachPrincipal(c, decision.Principal)
		return c.Next()
	default:
		return c.Next()
	}
}
