package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/search"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
	"github.com/panjiggm/syntegra-app-sub000/pkg/logging"
)

var participantTransitions = map[string][]string{
	models.ParticipantStatusInvited:    {models.ParticipantStatusRegistered},
	models.ParticipantStatusRegistered: {models.ParticipantStatusAttended},
	models.ParticipantStatusAttended:   {models.ParticipantStatusCompleted},
}

func participantTransitionAllowed(from, to string) bool {
	for _, allowed := range participantTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type ParticipantService struct {
	Repo *repo.GormRepo

	// ES is optional; when nil, indexing and search are disabled.
	ES      *elasticsearch.Client
	ESIndex string

	FrontendURL string
}

// Invite adds a participant to a session, provisioning a phone-keyed user
// when one does not exist yet, and returns the unique access link.
func (s *ParticipantService) Invite(ctx context.Context, sessionID uuid.UUID, req transport.InviteParticipantRequest) (*transport.ParticipantResponse, error) {
	l := logging.FromContext(ctx).With("svc", "participant.invite", "session_id", sessionID)

	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name and phone are required: %w", ErrValidation)
	}

	session, err := s.Repo.GetTestSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	switch session.Status {
	case models.SessionStatusCompleted, models.SessionStatusCancelled, models.SessionStatusExpired:
		return nil, fmt.Errorf("session is %s: %w", session.Status, ErrValidation)
	}

	exists, err := s.Repo.ParticipantExists(ctx, sessionID, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("participant already invited: %w", ErrConflict)
	}

	if session.MaxParticipants > 0 {
		count, err := s.Repo.CountParticipants(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if count >= int64(session.MaxParticipants) {
			return nil, fmt.Errorf("session is full: %w", ErrConflict)
		}
	}

	user, err := s.Repo.FindParticipantByPhone(ctx, req.Phone)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		user = &models.User{
			NIK:      req.NIK,
			Name:     req.Name,
			Phone:    req.Phone,
			Role:     models.RoleParticipant,
			IsActive: true,
		}
		if err := s.Repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	participant := models.SessionParticipant{
		SessionID:       sessionID,
		UserID:          user.ID,
		NIK:             req.NIK,
		Name:            req.Name,
		Phone:           req.Phone,
		Status:          models.ParticipantStatusInvited,
		UniqueLinkToken: uuid.NewString(),
	}
	if err := s.Repo.CreateParticipant(ctx, &participant); err != nil {
		return nil, err
	}

	s.index(ctx, &participant)
	l.Info("participant_invited", "participant_id", participant.ID)

	return &transport.ParticipantResponse{
		SessionParticipant: &participant,
		AccessLink:         s.AccessLink(&participant),
	}, nil
}

func (s *ParticipantService) AccessLink(p *models.SessionParticipant) string {
	return strings.TrimRight(s.FrontendURL, "/") + "/psikotes/" + p.UniqueLinkToken
}

// GetByLinkToken resolves a unique access link to its participant and the
// session it was invited to. This is how a participant lands from the link
// sent at invite time.
func (s *ParticipantService) GetByLinkToken(ctx context.Context, token string) (*models.SessionParticipant, *models.TestSession, error) {
	p, err := s.Repo.GetParticipantByLinkToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	session, err := s.Repo.GetTestSession(ctx, p.SessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return p, session, nil
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id uuid.UUID) (*models.SessionParticipant, error) {
	p, err := s.Repo.GetParticipant(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *ParticipantService) ListParticipants(ctx context.Context, sessionID uuid.UUID, status string, offset, limit int) (int64, []models.SessionParticipant, error) {
	return s.Repo.ListParticipants(ctx, sessionID, status, offset, limit)
}

// ListByUser returns every participation of one user with its session.
func (s *ParticipantService) ListByUser(ctx context.Context, userID uuid.UUID) ([]transport.ParticipationInfo, error) {
	items, err := s.Repo.ListParticipationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ParticipationInfo, 0, len(items))
	for i := range items {
		out = append(out, transport.ParticipationInfo{
			SessionParticipant: &items[i],
			Session:            items[i].Session,
		})
	}
	return out, nil
}

func (s *ParticipantService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.SessionParticipant, error) {
	p, err := s.Repo.GetParticipant(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !participantTransitionAllowed(p.Status, status) {
		return nil, fmt.Errorf("cannot move participant from %s to %s: %w", p.Status, status, ErrInvalidTransition)
	}

	if err := s.Repo.UpdateParticipantStatus(ctx, id, status); err != nil {
		return nil, err
	}
	p.Status = status
	s.index(ctx, p)
	return p, nil
}

func (s *ParticipantService) RemoveParticipant(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteParticipant(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.ES != nil {
		if err := search.DeleteParticipant(ctx, s.ES, s.ESIndex, id.String()); err != nil {
			logging.FromContext(ctx).Warn("participant_deindex_failed", "participant_id", id, "error", err)
		}
	}
	return nil
}

// Search queries the Elasticsearch index; unavailable when the cluster is
// not configured.
func (s *ParticipantService) Search(ctx context.Context, query string, from, size int) (int64, []search.ParticipantDoc, error) {
	if s.ES == nil {
		return 0, nil, fmt.Errorf("search backend not configured: %w", ErrNotFound)
	}
	return search.SearchParticipants(ctx, s.ES, s.ESIndex, query, from, size)
}

// index is best-effort: a search lagging the store is acceptable, a failed
// invite is not.
func (s *ParticipantService) index(ctx context.Context, p *models.SessionParticipant) {
	if s.ES == nil {
		return
	}
	if err := search.IndexParticipant(ctx, s.ES, s.ESIndex, search.DocFromParticipant(p)); err != nil {
		logging.FromContext(ctx).Warn("participant_index_failed", "participant_id", p.ID, "error", err)
	}
}
