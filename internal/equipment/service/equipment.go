package service

import (
	"context"
	"errors"
	"time"

	"vistoria/internal/calendar/events"
	equipmenterrors "vistoria/internal/equipment/errors"
	"vistoria/internal/equipment/repository"
	"vistoria/internal/equipment/validator"
	"vistoria/pkg/config"
	"vistoria/pkg/duration"
	apperrors "vistoria/pkg/errors"
	"vistoria/pkg/model"
	"vistoria/pkg/sanitizer"
)

// SnapshotSync receives equipment whose non-ledger fields changed.
type SnapshotSync interface {
	SyncEquipment(equipment *model.Equipment)
}

type EquipmentService interface {
	Register(ctx context.Context, reg *model.EquipmentRegistration) (*model.Equipment, error)
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	GetAll(ctx context.Context) ([]*model.Equipment, error)
	SetInspected(ctx context.Context, id string, toggle *model.ChecklistToggle) (*model.Equipment, error)
}

type equipmentService struct {
	repo      repository.EquipmentRepository
	validator *validator.EquipmentValidator
	sync      SnapshotSync
	publisher events.Publisher
	cfg       *config.Config
}

func NewEquipmentService(
	repo repository.EquipmentRepository,
	validator *validator.EquipmentValidator,
	sync SnapshotSync,
	publisher events.Publisher,
	cfg *config.Config,
) EquipmentService {
	return &equipmentService{
		repo:      repo,
		validator: validator,
		sync:      sync,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *equipmentService) Register(ctx context.Context, reg *model.EquipmentRegistration) (*model.Equipment, error) {
	s.sanitize(reg)

	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Equipment validation failed",
			"name", reg.Name,
			"error", err,
		)
		return nil, apperrors.Validation("Equipment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to check for existing equipment", "error", err)
		return nil, apperrors.Internal("Failed to check for existing equipment", err)
	}
	key := sanitizer.NormalizeNameForComparison(reg.Name)
	for _, e := range existing {
		if sanitizer.NormalizeNameForComparison(e.Name) == key {
			return nil, apperrors.Conflict("Equipment with the same name already exists")
		}
	}

	budget := duration.FromBudget(reg.Hours, reg.Minutes)
	equipment := &model.Equipment{
		Name:              reg.Name,
		TotalDuration:     budget,
		RemainingDuration: budget,
		Period:            reg.Period,
		Checklist:         reg.Checklist,
	}

	if err := s.repo.Create(ctx, equipment); err != nil {
		s.cfg.Log.Error("Failed to create equipment",
			"name", equipment.Name,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create equipment", err)
	}

	s.sync.SyncEquipment(equipment)
	s.publishUpdated(ctx, equipment, "registered")

	s.cfg.Log.Info("Equipment registered successfully",
		"id", equipment.ID,
		"name", equipment.Name,
		"budget", duration.Encode(budget),
		"checklist_groups", len(equipment.Checklist),
	)
	return equipment, nil
}

func (s *equipmentService) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}
	return equipment, nil
}

func (s *equipmentService) GetAll(ctx context.Context) ([]*model.Equipment, error) {
	equipment, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to get all equipment", "error", err)
		return nil, apperrors.Internal("Failed to retrieve equipment", err)
	}
	return equipment, nil
}

// SetInspected flips one checklist entry and persists the whole checklist.
func (s *equipmentService) SetInspected(ctx context.Context, id string, toggle *model.ChecklistToggle) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}
	if err := s.validator.ValidateToggle(toggle); err != nil {
		return nil, apperrors.Validation("Checklist update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapFindError(id, err)
	}

	if err := setInspected(equipment, toggle); err != nil {
		return nil, apperrors.InvalidInput("Checklist group or item does not exist").WithDetails(map[string]any{
			"group": toggle.Group,
			"item":  toggle.Item,
		})
	}

	if err := s.repo.UpdateChecklist(ctx, equipment.ID, equipment.Checklist); err != nil {
		if errors.Is(err, equipmenterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Equipment", id)
		}
		s.cfg.Log.Error("Failed to update checklist",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update checklist", err)
	}

	s.sync.SyncEquipment(equipment)
	s.publishUpdated(ctx, equipment, "checklist")

	s.cfg.Log.Info("Checklist updated successfully",
		"id", equipment.ID,
		"group", toggle.Group,
		"item", toggle.Item,
		"inspected", toggle.Inspected,
	)
	return equipment, nil
}

// publishUpdated lets other instances refresh their snapshot. A failed publish
// is logged and the write stands.
func (s *equipmentService) publishUpdated(ctx context.Context, equipment *model.Equipment, reason string) {
	event := events.Event{
		Type:              events.EquipmentUpdated,
		EquipmentID:       equipment.ID,
		PreviousRemaining: equipment.RemainingDuration,
		NextRemaining:     equipment.RemainingDuration,
		Reason:            reason,
		OccurredAt:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish equipment event",
			"id", equipment.ID,
			"reason", reason,
			"error", err,
		)
	}
}

func setInspected(equipment *model.Equipment, toggle *model.ChecklistToggle) error {
	if toggle.Group >= len(equipment.Checklist) {
		return equipmenterrors.ErrChecklistIndex
	}
	items := equipment.Checklist[toggle.Group].Items
	if toggle.Item >= len(items) {
		return equipmenterrors.ErrChecklistIndex
	}
	items[toggle.Item].Inspected = toggle.Inspected
	return nil
}

func (s *equipmentService) mapFindError(id string, err error) error {
	if errors.Is(err, equipmenterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Equipment", id)
	}
	if errors.Is(err, equipmenterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid equipment ID format")
	}
	s.cfg.Log.Error("Failed to get equipment by ID",
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to retrieve equipment", err)
}

func (s *equipmentService) sanitize(reg *model.EquipmentRegistration) {
	reg.Name = sanitizer.NormalizeName(reg.Name)
	reg.Checklist = sanitizer.SanitizeChecklist(reg.Checklist)
}
