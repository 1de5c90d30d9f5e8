// File: session/manager.go
package session

import (
	"context"
	"errors"
	"time"

	"carhub/models"
	"carhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the two auth states: Anonymous (no session) and
// Authenticated (session holding a token). It is handed to views by
// injection rather than reached for as an ambient singleton.
type Manager struct {
	Store  Store
	Logger *zap.Logger
}

func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{Store: store, Logger: logger}
}

// Login stores a bearer token under a fresh session id and decodes its
// claims. A token that fails to decode still yields an Authenticated
// session with a nil user; the upstream's 401 is the only invalidator.
func (m *Manager) Login(ctx context.Context, token string) (*models.AuthSession, error) {
	session := &models.AuthSession{
		SessionID: uuid.New().String(),
		Token:     token,
		CreatedAt: time.Now(),
	}

	claims, err := utils.DecodeTokenClaims(token)
	if err != nil {
		m.Logger.Warn("Failed to decode token claims", zap.Error(err))
	} else {
		session.User = &models.SessionUser{
			Subject:  claims.Subject,
			Username: claims.Username,
			Role:     claims.Role,
			Expiry:   claims.Expiry,
		}
	}

	if err := m.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current rehydrates a session by id. A missing id or missing session is the
// Anonymous state, reported as (nil, nil).
func (m *Manager) Current(ctx context.Context, sessionID string) (*models.AuthSession, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := m.Store.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Logout destroys both the stored session and, with it, the persisted token.
// Missing sessions are not an error; logout is idempotent.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.Store.Delete(ctx, sessionID)
}
