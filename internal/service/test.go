package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
)

type TestService struct {
	Repo *repo.GormRepo
}

func (s *TestService) GetTest(ctx context.Context, id uuid.UUID) (*models.Test, error) {
	test, err := s.Repo.GetTest(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return test, err
}

func (s *TestService) ListTests(ctx context.Context, f repo.TestFilter, offset, limit int) (int64, []models.Test, error) {
	return s.Repo.ListTests(ctx, f, offset, limit)
}

func (s *TestService) CreateTest(ctx context.Context, req transport.CreateTestRequest) (*models.Test, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if req.DurationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive: %w", ErrValidation)
	}

	test := models.Test{
		Name:            req.Name,
		Category:        req.Category,
		ModuleType:      req.ModuleType,
		DurationMinutes: req.DurationMinutes,
		TotalQuestions:  req.TotalQuestions,
		IsActive:        true,
	}
	if err := s.Repo.CreateTest(ctx, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

func (s *TestService) PatchTest(ctx context.Context, id uuid.UUID, req transport.PatchTestRequest) (*models.Test, error) {
	test, err := s.Repo.GetTest(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		test.Name = *req.Name
	}
	if req.Category != nil {
		test.Category = *req.Category
	}
	if req.ModuleType != nil {
		test.ModuleType = *req.ModuleType
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, fmt.Errorf("duration must be positive: %w", ErrValidation)
		}
		test.DurationMinutes = *req.DurationMinutes
	}
	if req.TotalQuestions != nil {
		test.TotalQuestions = *req.TotalQuestions
	}
	if req.IsActive != nil {
		test.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveTest(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

func (s *TestService) DeleteTest(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteTest(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
