package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func sessionCaptureHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestShopperSessionMintsIDForNewVisitors(t *testing.T) {
	var captured string
	handler := ShopperSession(nil)(sessionCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured == "" {
		t.Fatal("expected session id in context")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected uuid session id, got %q", captured)
	}
	if echoed := resp.Header().Get("X-Session-Id"); echoed != captured {
		t.Fatalf("expected header echo %q, got %q", captured, echoed)
	}
}

func TestShopperSessionKeepsClientID(t *testing.T) {
	var captured string
	handler := ShopperSession(nil)(sessionCaptureHandler(&captured))

	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", existing)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != existing {
		t.Fatalf("expected session %q kept, got %q", existing, captured)
	}
}

func TestShopperSessionRejectsArbitraryIDs(t *testing.T) {
	var captured string
	handler := ShopperSession(nil)(sessionCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", "../../tn:cart:admin")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured == "../../tn:cart:admin" {
		t.Fatal("expected malformed session id replaced")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Fatalf("expected minted uuid, got %q", captured)
	}
}

func TestShopperSessionPrefersAuthenticatedUser(t *testing.T) {
	var captured string
	handler := ShopperSession(nil)(sessionCaptureHandler(&captured))

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Session-Id", uuid.NewString())
	req = req.WithContext(WithUserID(req.Context(), userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != "user:"+userID.String() {
		t.Fatalf("expected user-derived slot key, got %q", captured)
	}
	if resp.Header().Get("X-Session-Id") != "" {
		t.Fatal("authenticated requests must not echo a session header")
	}
}
