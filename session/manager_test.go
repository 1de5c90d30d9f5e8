package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newManager() *Manager {
	return NewManager(NewMemoryStore(), zap.NewNop())
}

func TestLoginDecodesClaims(t *testing.T) {
	mgr := newManager()
	exp := time.Now().Add(time.Hour).Unix()
	token := signedToken(t, jwt.MapClaims{
		"sub":      "42",
		"username": "sam",
		"role":     "station_owner",
		"exp":      float64(exp),
	})

	sess, err := mgr.Login(context.Background(), token)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session")
	}
	if sess.User == nil {
		t.Fatalf("expected decoded user")
	}
	if sess.User.Username != "sam" || sess.User.Role != "station_owner" {
		t.Fatalf("unexpected user: %+v", sess.User)
	}
	if sess.User.Expiry.Unix() != exp {
		t.Fatalf("expected expiry %d, got %d", exp, sess.User.Expiry.Unix())
	}
}

func TestLoginMalformedTokenStillAuthenticates(t *testing.T) {
	mgr := newManager()

	sess, err := mgr.Login(context.Background(), "not-a-jwt")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatalf("expected authenticated session despite decode failure")
	}
	if sess.User != nil {
		t.Fatalf("expected nil user for undecodable token, got %+v", sess.User)
	}

	loaded, err := mgr.Current(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if loaded == nil || loaded.Token != "not-a-jwt" {
		t.Fatalf("expected rehydrated token, got %+v", loaded)
	}
}

func TestLogoutYieldsAnonymous(t *testing.T) {
	mgr := newManager()
	sess, err := mgr.Login(context.Background(), signedToken(t, jwt.MapClaims{"sub": "1"}))
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := mgr.Logout(context.Background(), sess.SessionID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	loaded, err := mgr.Current(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected anonymous after logout, got %+v", loaded)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	mgr := newManager()
	if err := mgr.Logout(context.Background(), "never-existed"); err != nil {
		t.Fatalf("logout of missing session should not fail: %v", err)
	}
	if err := mgr.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout with empty id should not fail: %v", err)
	}
}

func TestCurrentMissingSessionIsAnonymous(t *testing.T) {
	mgr := newManager()
	sess, err := mgr.Current(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected nil session, got %+v", sess)
	}
}
