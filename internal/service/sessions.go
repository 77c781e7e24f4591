package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

// SessionManager lists and revokes a user's auth sessions.
type SessionManager struct {
	Repo   *repo.GormRepo
	Events *events.Producer
}

// ListSessions returns the user's active sessions newest first, flagging
// the one the request was authenticated with.
func (m *SessionManager) ListSessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]transport.SessionInfo, error) {
	sessions, err := m.Repo.ListActiveSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, transport.SessionInfo{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			LastUsed:  s.LastUsed,
			ExpiresAt: s.ExpiresAt,
			IsCurrent: s.ID == currentSessionID,
		})
	}
	return out, nil
}

// RevokeSession deactivates one session, only if it belongs to the
// requesting user.
func (m *SessionManager) RevokeSession(ctx context.Context, sessionID, requestingUserID uuid.UUID) error {
	session, err := m.Repo.GetAuthSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.UserID != requestingUserID {
		return ErrSessionForbidden
	}

	if err := m.Repo.DeactivateSession(ctx, sessionID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if err := m.Events.Publish(ctx, events.TypeSessionRevoked, requestingUserID.String(),
		map[string]any{"session_id": sessionID}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", events.TypeSessionRevoked, "error", err)
	}
	return nil
}

// RevokeOtherSessions deactivates every active session except the current
// one and returns how many were revoked.
func (m *SessionManager) RevokeOtherSessions(ctx context.Context, userID, keepSessionID uuid.UUID) (int64, error) {
	count, err := m.Repo.DeactivateOtherUserSessions(ctx, userID, keepSessionID)
	if err != nil {
		return 0, err
	}

	if err := m.Events.Publish(ctx, events.TypeSessionRevoked, userID.String(),
		map[string]any{"kept": keepSessionID, "revoked": count}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", events.TypeSessionRevoked, "error", err)
	}
	return count, nil
}
