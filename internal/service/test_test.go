package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjiggm/syntegra-app-sub000/internal/repo"
	"github.com/panjiggm/syntegra-app-sub000/internal/transport"
)

func TestCreateTest_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := &TestService{Repo: env.repo}
	ctx := context.Background()

	_, err := svc.CreateTest(ctx, transport.CreateTestRequest{DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateTest(ctx, transport.CreateTestRequest{Name: "WAIS", DurationMinutes: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTestCRUD(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := &TestService{Repo: env.repo}
	ctx := context.Background()

	created, err := svc.CreateTest(ctx, transport.CreateTestRequest{
		Name:            "WAIS",
		Category:        "intelligence",
		ModuleType:      "multiple_choice",
		DurationMinutes: 60,
		TotalQuestions:  40,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	name := "WAIS-IV"
	inactive := false
	patched, err := svc.PatchTest(ctx, created.ID, transport.PatchTestRequest{
		Name:     &name,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "WAIS-IV", patched.Name)
	assert.False(t, patched.IsActive)
	assert.Equal(t, 60, patched.DurationMinutes)

	total, items, err := svc.ListTests(ctx, repo.TestFilter{Category: "intelligence"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)

	total, _, err = svc.ListTests(ctx, repo.TestFilter{Category: "personality"}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, svc.DeleteTest(ctx, created.ID))
	_, err = svc.GetTest(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteTest(ctx, uuid.New()), ErrNotFound)
}
