package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/events"
	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

// sessionTransitions declares every legal status move; anything absent is
// rejected.
var sessionTransitions = map[string][]string{
	models.SessionStatusDraft:  {models.SessionStatusActive, models.SessionStatusCancelled, models.SessionStatusExpired},
	models.SessionStatusActive: {models.SessionStatusCompleted, models.SessionStatusCancelled, models.SessionStatusExpired},
}

func sessionTransitionAllowed(from, to string) bool {
	for _, allowed := range sessionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type TestSessionService struct {
	Repo   *repo.GormRepo
	Events *events.Producer

	Now func() time.Time
}

func (s *TestSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *TestSessionService) GetSession(ctx context.Context, id uuid.UUID) (*models.TestSession, error) {
	session, err := s.Repo.GetTestSession(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return session, err
}

func (s *TestSessionService) GetSessionByCode(ctx context.Context, code string) (*models.TestSession, error) {
	session, err := s.Repo.GetTestSessionByCode(ctx, strings.TrimSpace(code))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return session, err
}

func (s *TestSessionService) ListSessions(ctx context.Context, status string, offset, limit int) (int64, []models.TestSession, error) {
	return s.Repo.ListTestSessions(ctx, status, offset, limit)
}

func (s *TestSessionService) CreateSession(ctx context.Context, req transport.CreateSessionRequest) (*models.TestSession, error) {
	if strings.TrimSpace(req.SessionName) == "" || strings.TrimSpace(req.SessionCode) == "" {
		return nil, fmt.Errorf("session_name and session_code are required: %w", ErrValidation)
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end_time must be after start_time: %w", ErrValidation)
	}

	if _, err := s.Repo.GetTestSessionByCode(ctx, req.SessionCode); err == nil {
		return nil, fmt.Errorf("session_code already in use: %w", ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	session := models.TestSession{
		SessionName:     req.SessionName,
		SessionCode:     req.SessionCode,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          models.SessionStatusDraft,
		TargetPosition:  req.TargetPosition,
		MaxParticipants: req.MaxParticipants,
	}
	if err := s.Repo.CreateTestSession(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *TestSessionService) PatchSession(ctx context.Context, id uuid.UUID, req transport.PatchSessionRequest) (*models.TestSession, error) {
	session, err := s.Repo.GetTestSession(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.SessionName != nil {
		session.SessionName = *req.SessionName
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = *req.EndTime
	}
	if req.TargetPosition != nil {
		session.TargetPosition = *req.TargetPosition
	}
	if req.MaxParticipants != nil {
		session.MaxParticipants = *req.MaxParticipants
	}
	if !session.EndTime.After(session.StartTime) {
		return nil, fmt.Errorf("end_time must be after start_time: %w", ErrValidation)
	}

	if err := s.Repo.SaveTestSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateStatus applies one transition from the lookup table.
func (s *TestSessionService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.TestSession, error) {
	session, err := s.Repo.GetTestSession(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !sessionTransitionAllowed(session.Status, status) {
		return nil, fmt.Errorf("cannot move session from %s to %s: %w", session.Status, status, ErrInvalidTransition)
	}

	if err := s.Repo.UpdateTestSessionStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, session, status)
	session.Status = status
	return session, nil
}

func (s *TestSessionService) DeleteSession(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteTestSession(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Sweep is the on-demand scheduler: one pass activates draft sessions whose
// window has opened and expires sessions whose window has closed.
func (s *TestSessionService) Sweep(ctx context.Context) (*transport.SweepResult, error) {
	l := logging.FromContext(ctx).With("svc", "session.sweep")
	now := s.now()
	result := &transport.SweepResult{}

	due, err := s.Repo.DueSessions(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range due {
		if err := s.Repo.UpdateTestSessionStatus(ctx, due[i].ID, models.SessionStatusActive); err != nil {
			return nil, err
		}
		s.publishStatusChange(ctx, &due[i], models.SessionStatusActive)
		result.Activated++
	}

	overdue, err := s.Repo.OverdueSessions(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range overdue {
		if err := s.Repo.UpdateTestSessionStatus(ctx, overdue[i].ID, models.SessionStatusExpired); err != nil {
			return nil, err
		}
		s.publishStatusChange(ctx, &overdue[i], models.SessionStatusExpired)
		result.Expired++
	}

	l.Info("sweep_completed", "activated", result.Activated, "expired", result.Expired)
	return result, nil
}

func (s *TestSessionService) publishStatusChange(ctx context.Context, session *models.TestSession, status string) {
	if err := s.Events.Publish(ctx, events.TypeSessionStatus, session.ID.String(), map[string]any{
		"session_code": session.SessionCode,
		"from":         session.Status,
		"to":           status,
	}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", events.TypeSessionStatus, "error", err)
	}
}
