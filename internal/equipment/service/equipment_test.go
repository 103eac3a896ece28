package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vistoria/internal/calendar/events"
	equipmenterrors "vistoria/internal/equipment/errors"
	"vistoria/internal/equipment/validator"
	"vistoria/pkg/config"
	apperrors "vistoria/pkg/errors"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	items     map[string]*model.Equipment
	order     []string
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*model.Equipment{}}
}

func (r *fakeRepo) Create(_ context.Context, e *model.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	e.ID = fmt.Sprintf("eq-%d", len(r.order)+1)
	r.items[e.ID] = e.Clone()
	r.order = append(r.order, e.ID)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*model.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "bad-id" {
		return nil, equipmenterrors.ErrInvalidID
	}
	e, ok := r.items[id]
	if !ok {
		return nil, equipmenterrors.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *fakeRepo) FindAll(context.Context) ([]*model.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Equipment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *fakeRepo) UpdateRemaining(_ context.Context, id string, remaining int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return equipmenterrors.ErrNotFound
	}
	e.RemainingDuration = remaining
	return nil
}

func (r *fakeRepo) UpdateChecklist(_ context.Context, id string, checklist []model.ChecklistGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return equipmenterrors.ErrNotFound
	}
	e.Checklist = (&model.Equipment{Checklist: checklist}).Clone().Checklist
	return nil
}

// recordingSync stands in for both the local snapshot and the event publisher.
type recordingSync struct {
	synced     []*model.Equipment
	published  []events.Event
	publishErr error
}

func (s *recordingSync) SyncEquipment(e *model.Equipment) {
	s.synced = append(s.synced, e.Clone())
}

func (s *recordingSync) Publish(_ context.Context, event events.Event) error {
	s.published = append(s.published, event)
	return s.publishErr
}

func (s *recordingSync) Close() error { return nil }

func newTestService() (EquipmentService, *fakeRepo, *recordingSync) {
	log := logger.Nop()
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second}
	repo := newFakeRepo()
	recorder := &recordingSync{}
	return NewEquipmentService(repo, validator.NewEquipmentValidator(log), recorder, recorder, cfg), repo, recorder
}

func registration(name string) *model.EquipmentRegistration {
	return &model.EquipmentRegistration{
		Name:    name,
		Hours:   8,
		Minutes: 30,
		Period:  model.Period{Value: 1, Unit: model.PeriodWeek},
		Checklist: []model.ChecklistGroup{
			{Items: []model.ChecklistItem{{Label: " Verificar  óleo "}, {Label: "Filtro"}}},
			{Items: []model.ChecklistItem{{Label: "Correia"}}},
		},
	}
}

func TestRegister(t *testing.T) {
	svc, repo, recorder := newTestService()

	eq, err := svc.Register(context.Background(), registration("  Gerador   Diesel "))
	require.NoError(t, err)

	assert.Equal(t, "eq-1", eq.ID)
	assert.Equal(t, "Gerador Diesel", eq.Name)
	assert.Equal(t, int64(8*3600+30*60), eq.TotalDuration)
	assert.Equal(t, eq.TotalDuration, eq.RemainingDuration)
	assert.Equal(t, "Verificar óleo", eq.Checklist[0].Items[0].Label)

	require.Len(t, recorder.synced, 1)
	assert.Equal(t, "eq-1", recorder.synced[0].ID)

	require.Len(t, recorder.published, 1)
	assert.Equal(t, events.EquipmentUpdated, recorder.published[0].Type)
	assert.Equal(t, "eq-1", recorder.published[0].EquipmentID)
	assert.Equal(t, "registered", recorder.published[0].Reason)

	stored, err := repo.FindByID(context.Background(), "eq-1")
	require.NoError(t, err)
	assert.Equal(t, eq.TotalDuration, stored.RemainingDuration)
}

func TestRegister_DuplicateNameConflict(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), registration("Gerador Diesel"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registration("gerador  DIESEL"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc, repo, recorder := newTestService()
	reg := registration("Gerador")
	reg.Hours, reg.Minutes = 0, 0

	_, err := svc.Register(context.Background(), reg)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
	assert.Empty(t, repo.order)
	assert.Empty(t, recorder.synced)
	assert.Empty(t, recorder.published)
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, repo, recorder := newTestService()
	repo.createErr = errors.New("connection refused")

	_, err := svc.Register(context.Background(), registration("Gerador"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.AsAppError(err).Code)
	assert.Empty(t, recorder.synced)
}

func TestGetByID(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Register(context.Background(), registration("Gerador"))
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)

	tests := []struct {
		id   string
		code string
	}{
		{"", apperrors.CodeInvalidInput},
		{"bad-id", apperrors.CodeInvalidInput},
		{"eq-99", apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		_, err := svc.GetByID(context.Background(), tt.id)
		require.Error(t, err, tt.id)
		assert.Equal(t, tt.code, apperrors.AsAppError(err).Code, tt.id)
	}
}

func TestGetAll(t *testing.T) {
	svc, _, _ := newTestService()
	for _, name := range []string{"Gerador", "Compressor"} {
		_, err := svc.Register(context.Background(), registration(name))
		require.NoError(t, err)
	}

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetInspected(t *testing.T) {
	ctx := context.Background()
	svc, repo, recorder := newTestService()
	created, err := svc.Register(ctx, registration("Gerador"))
	require.NoError(t, err)

	updated, err := svc.SetInspected(ctx, created.ID, &model.ChecklistToggle{Group: 0, Item: 1, Inspected: true})
	require.NoError(t, err)
	assert.True(t, updated.Checklist[0].Items[1].Inspected)
	assert.False(t, updated.Checklist[0].Items[0].Inspected)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Checklist[0].Items[1].Inspected)

	require.Len(t, recorder.synced, 2)
	assert.True(t, recorder.synced[1].Checklist[0].Items[1].Inspected)

	require.Len(t, recorder.published, 2)
	assert.Equal(t, events.EquipmentUpdated, recorder.published[1].Type)
	assert.Equal(t, created.ID, recorder.published[1].EquipmentID)
	assert.Equal(t, "checklist", recorder.published[1].Reason)

	_, err = svc.SetInspected(ctx, created.ID, &model.ChecklistToggle{Group: 0, Item: 1, Inspected: false})
	require.NoError(t, err)
	stored, _ = repo.FindByID(ctx, created.ID)
	assert.False(t, stored.Checklist[0].Items[1].Inspected)
}

func TestSetInspected_PublishFailureKeepsWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo, recorder := newTestService()
	created, err := svc.Register(ctx, registration("Gerador"))
	require.NoError(t, err)
	recorder.publishErr = errors.New("broker unavailable")

	_, err = svc.SetInspected(ctx, created.ID, &model.ChecklistToggle{Group: 1, Item: 0, Inspected: true})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Checklist[1].Items[0].Inspected)
	assert.Len(t, recorder.published, 2)
}

func TestSetInspected_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	created, err := svc.Register(ctx, registration("Gerador"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     string
		toggle *model.ChecklistToggle
		code   string
	}{
		{"group out of range", created.ID, &model.ChecklistToggle{Group: 5}, apperrors.CodeInvalidInput},
		{"item out of range", created.ID, &model.ChecklistToggle{Group: 1, Item: 1}, apperrors.CodeInvalidInput},
		{"negative index", created.ID, &model.ChecklistToggle{Group: -1}, apperrors.CodeValidation},
		{"unknown equipment", "eq-42", &model.ChecklistToggle{}, apperrors.CodeNotFound},
		{"empty id", "", &model.ChecklistToggle{}, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetInspected(ctx, tt.id, tt.toggle)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.AsAppError(err).Code)
		})
	}
}
