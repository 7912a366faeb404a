package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/internal/users"
	pkgauth "github.com/technova/storefront-backend/pkg/auth"
	"github.com/technova/storefront-backend/pkg/auth/session"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/db"
	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/logger"
	"github.com/technova/storefront-backend/pkg/security"
)

// Service handles account registration and the access/refresh token
// lifecycle.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*Result, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type service struct {
	repo     *users.Repository
	sessions sessionManager
	limiter  rateLimiter
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	limitCfg config.AuthRateLimitConfig
	logg     *logger.Logger
}

// NewService constructs the auth service.
func NewService(
	repo *users.Repository,
	sessions sessionManager,
	limiter rateLimiter,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	limitCfg config.AuthRateLimitConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		limiter:  limiter,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		limitCfg: limitCfg,
		logg:     logg,
	}, nil
}

// Register creates an account and signs the shopper in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	email := users.NormalizeEmail(input.Email)
	if err := validateRegisterInput(email, input); err != nil {
		return nil, err
	}

	if err := s.allow(ctx, "register:email:"+email, int64(s.limitCfg.RegisterEmailLimit), s.limitCfg.RegisterWindow); err != nil {
		return nil, err
	}
	if err := s.allowIP(ctx, "register:ip:", input.ClientIP, int64(s.limitCfg.RegisterIPLimit), s.limitCfg.RegisterWindow); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
	}

	s.logg.Info(s.logg.WithField(ctx, "user_id", user.ID.String()), "account registered")
	return s.issueTokens(ctx, user)
}

// Login verifies credentials and signs the shopper in. Unknown emails and
// wrong passwords surface identically.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	email := users.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	if err := s.allow(ctx, "login:email:"+email, int64(s.limitCfg.LoginEmailLimit), s.limitCfg.LoginWindow); err != nil {
		return nil, err
	}
	if err := s.allowIP(ctx, "login:ip:", input.ClientIP, int64(s.limitCfg.LoginIPLimit), s.limitCfg.LoginWindow); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.issueTokens(ctx, *user)
}

// Refresh rotates the refresh token and mints a fresh access token. The
// expired access token identifies the session being rotated.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*Result, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if user == nil || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer active")
	}

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &Result{
		AccessToken:  signed,
		RefreshToken: newRefresh,
		User:         users.ToProfileDTO(*user),
	}, nil
}

// Logout revokes the refresh session tied to the access token id.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) issueTokens(ctx context.Context, user models.User) (*Result, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &Result{
		AccessToken:  signed,
		RefreshToken: refresh,
		User:         users.ToProfileDTO(user),
	}, nil
}

func (s *service) allow(ctx context.Context, scope string, limit int64, window time.Duration) error {
	if limit <= 0 || window <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		// Auth must stay available when Redis is down; log and let the
		// request through.
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "rate limit check failed")
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later")
	}
	return nil
}

func (s *service) allowIP(ctx context.Context, prefix, ip string, limit int64, window time.Duration) error {
	if strings.TrimSpace(ip) == "" {
		return nil
	}
	return s.allow(ctx, prefix+ip, limit, window)
}

func validateRegisterInput(email string, input RegisterInput) error {
	if email == "" || !strings.Contains(email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}
	return nil
}
