package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/smart-scheduler/internal/apperrors"
	"github.com/benvon/smart-scheduler/internal/database"
	"github.com/benvon/smart-scheduler/internal/models"
	"github.com/google/uuid"
)

type mockPreferenceRepo struct {
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*models.Preference, error)
	upsertFunc      func(ctx context.Context, p *models.Preference) error
	gets            int
}

var _ database.PreferenceRepositoryInterface = (*mockPreferenceRepo)(nil)

func (m *mockPreferenceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Preference, error) {
	m.gets++
	if m.getByUserIDFunc != nil {
		return m.getByUserIDFunc(ctx, userID)
	}
	return nil, apperrors.NotFound("GetByUserID", "preferences")
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, p *models.Preference) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, p)
	}
	return nil
}

type mockInvalidator struct {
	invalidated []uuid.UUID
	err         error
}

func (m *mockInvalidator) InvalidateUser(_ context.Context, userID uuid.UUID) error {
	m.invalidated = append(m.invalidated, userID)
	return m.err
}

func TestAccessor_GetNotFound(t *testing.T) {
	t.Parallel()

	a := NewAccessor(&mockPreferenceRepo{}, nil, 8, time.Minute, nil)
	_, err := a.Get(context.Background(), uuid.New())
	if !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
}

func TestAccessor_ResolveDefaults(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	a := NewAccessor(&mockPreferenceRepo{}, nil, 8, time.Minute, nil)
	p, err := a.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.UserID != userID || p.WorkStartHour != 9 || p.WorkEndHour != 17 {
		t.Errorf("Expected default preferences for user, got %+v", p)
	}
}

func TestAccessor_ResolvePropagatesUpstream(t *testing.T) {
	t.Parallel()

	repo := &mockPreferenceRepo{
		getByUserIDFunc: func(context.Context, uuid.UUID) (*models.Preference, error) {
			return nil, apperrors.Upstream("GetByUserID", errors.New("connection refused"))
		},
	}
	a := NewAccessor(repo, nil, 8, time.Minute, nil)
	if _, err := a.Resolve(context.Background(), uuid.New()); !apperrors.Is(err, apperrors.KindUpstreamUnavailable) {
		t.Errorf("Expected UpstreamUnavailable, got %v", err)
	}
}

func TestAccessor_GetCachesAndClones(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &mockPreferenceRepo{
		getByUserIDFunc: func(context.Context, uuid.UUID) (*models.Preference, error) {
			return models.DefaultPreference(userID), nil
		},
	}
	a := NewAccessor(repo, nil, 8, time.Minute, nil)

	first, err := a.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	first.WorkingDays[0] = 6
	first.MeetingTypePreferences["demo"] = models.MeetingTypePreference{MaxPerDay: 1}

	second, err := a.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if repo.gets != 1 {
		t.Errorf("Expected 1 repository read, got %d", repo.gets)
	}
	if second.WorkingDays[0] != 1 {
		t.Errorf("Expected cached value to be unaffected by caller mutation, got %v", second.WorkingDays)
	}
	if _, ok := second.MeetingTypePreferences["demo"]; ok {
		t.Error("Expected cached map to be unaffected by caller mutation")
	}
}

func TestAccessor_Set(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var stored *models.Preference
	repo := &mockPreferenceRepo{
		upsertFunc: func(_ context.Context, p *models.Preference) error {
			stored = p
			return nil
		},
	}
	inv := &mockInvalidator{}
	a := NewAccessor(repo, inv, 8, time.Minute, nil)
	fixed := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	p := models.DefaultPreference(userID)
	p.BufferMinutes = 30
	saved, err := a.Set(context.Background(), p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored == nil || stored.BufferMinutes != 30 {
		t.Fatalf("Expected preferences to be upserted, got %+v", stored)
	}
	if !saved.UpdatedAt.Equal(fixed) {
		t.Errorf("Expected updated_at %v, got %v", fixed, saved.UpdatedAt)
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != userID {
		t.Errorf("Expected slot cache invalidation for %s, got %v", userID, inv.invalidated)
	}

	got, err := a.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.BufferMinutes != 30 {
		t.Errorf("Expected cached write to be visible, got buffer %d", got.BufferMinutes)
	}
	if repo.gets != 0 {
		t.Errorf("Expected read to be served from cache, got %d repository reads", repo.gets)
	}
}

func TestAccessor_SetInvalid(t *testing.T) {
	t.Parallel()

	called := false
	repo := &mockPreferenceRepo{
		upsertFunc: func(context.Context, *models.Preference) error {
			called = true
			return nil
		},
	}
	a := NewAccessor(repo, nil, 8, time.Minute, nil)

	p := models.DefaultPreference(uuid.New())
	p.WorkStartHour, p.WorkEndHour = 17, 9
	_, err := a.Set(context.Background(), p)
	if !apperrors.Is(err, apperrors.KindInvalidInput) {
		t.Fatalf("Expected InvalidInput, got %v", err)
	}
	if called {
		t.Error("Expected invalid preferences not to be stored")
	}
}

func TestAccessor_SetSurvivesInvalidationFailure(t *testing.T) {
	t.Parallel()

	a := NewAccessor(&mockPreferenceRepo{}, &mockInvalidator{err: errors.New("redis down")}, 8, time.Minute, nil)
	if _, err := a.Set(context.Background(), models.DefaultPreference(uuid.New())); err != nil {
		t.Errorf("Expected invalidation failure to be tolerated, got %v", err)
	}
}
