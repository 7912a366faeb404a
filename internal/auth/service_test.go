package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/technova/storefront-backend/internal/users"
	pkgauth "github.com/technova/storefront-backend/pkg/auth"
	"github.com/technova/storefront-backend/pkg/auth/session"
	"github.com/technova/storefront-backend/pkg/config"
	"github.com/technova/storefront-backend/pkg/db/models"
	pkgerrors "github.com/technova/storefront-backend/pkg/errors"
	"github.com/technova/storefront-backend/pkg/logger"
)

type fakeSessions struct {
	tokens  map[string]string
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	f.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	delete(f.tokens, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

type fakeLimiter struct {
	counts map[string]int64
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

type authFixture struct {
	svc      Service
	repo     *users.Repository
	sessions *fakeSessions
	limiter  *fakeLimiter
	jwtCfg   config.JWTConfig
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
	}
	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	limitCfg := config.AuthRateLimitConfig{
		LoginWindow:        time.Minute,
		LoginEmailLimit:    3,
		LoginIPLimit:       10,
		RegisterWindow:     time.Minute,
		RegisterEmailLimit: 2,
		RegisterIPLimit:    10,
	}

	repo := users.NewRepository(conn)
	sessions := newFakeSessions()
	limiter := newFakeLimiter()
	logg := logger.New(logger.Options{Output: io.Discard})

	svc, err := NewService(repo, sessions, limiter, jwtCfg, pwCfg, limitCfg, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &authFixture{svc: svc, repo: repo, sessions: sessions, limiter: limiter, jwtCfg: jwtCfg}
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:    "An.Nguyen@Example.com",
		Password: "correct horse battery",
		FullName: "An Nguyen",
		ClientIP: "203.0.113.7",
	}
}

func TestRegisterIssuesTokens(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}
	if result.User.Email != "an.nguyen@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}

	claims, err := pkgauth.ParseAccessToken(f.jwtCfg, result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatal("access token subject mismatch")
	}
	if _, ok := f.sessions.tokens[claims.ID]; !ok {
		t.Fatal("expected refresh session stored under the token id")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := f.svc.Register(ctx, RegisterInput{
		Email:    "an.nguyen@example.com",
		Password: "another password",
		FullName: "Impostor",
	})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "long enough pw", FullName: "A"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "long enough pw", FullName: "A"}},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short", FullName: "A"}},
		{"missing name", RegisterInput{Email: "a@example.com", Password: "long enough pw"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tc.input)
			if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPw := errMessage(t, func() error {
		_, err := f.svc.Login(ctx, LoginInput{Email: "an.nguyen@example.com", Password: "wrong"})
		return err
	})
	_, unknown := errMessage(t, func() error {
		_, err := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "wrong"})
		return err
	})
	if wrongPw != unknown {
		t.Fatalf("credential failures must be indistinguishable: %q vs %q", wrongPw, unknown)
	}
}

func errMessage(t *testing.T, fn func() error) (pkgerrors.Code, string) {
	t.Helper()
	err := fn()
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	return coded.Code(), coded.Message()
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := f.svc.Login(ctx, LoginInput{
		Email:    "AN.NGUYEN@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected tokens on login")
	}
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, LoginInput{Email: "target@example.com", Password: "guess"})
		if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("attempt %d: expected UNAUTHORIZED, got %v", i, err)
		}
	}

	_, err := f.svc.Login(ctx, LoginInput{Email: "target@example.com", Password: "guess"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED on fourth attempt, got %v", err)
	}

	// Other emails keep their own window.
	_, err = f.svc.Login(ctx, LoginInput{Email: "other@example.com", Password: "guess"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for other email, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	initial, err := f.svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	rotated, err := f.svc.Refresh(ctx, initial.AccessToken, initial.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.AccessToken == initial.AccessToken {
		t.Fatal("expected a new access token")
	}
	if rotated.RefreshToken == initial.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The old pair is burned.
	_, err = f.svc.Refresh(ctx, initial.AccessToken, initial.RefreshToken)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED reusing rotated pair, got %v", err)
	}

	// The new pair works.
	if _, err := f.svc.Refresh(ctx, rotated.AccessToken, rotated.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated pair: %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-jwt", "whatever")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(f.jwtCfg, result.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := f.svc.Logout(ctx, claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := f.sessions.tokens[claims.ID]; ok {
		t.Fatal("expected session revoked")
	}

	_, err = f.svc.Refresh(ctx, result.AccessToken, result.RefreshToken)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED after logout, got %v", err)
	}
}
