package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
)

// PresetService manages opening-balance presets
type PresetService struct {
	presetRepo billing.BalancePresetRepository
}

// NewPresetService creates a new PresetService
func NewPresetService(presetRepo billing.BalancePresetRepository) *PresetService {
	return &PresetService{presetRepo: presetRepo}
}

// CreatePresetRequest is the payload for creating a preset
type CreatePresetRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreatePreset creates a new balance preset. Names are unique per
// school, compared case-insensitively.
func (s *PresetService) CreatePreset(ctx context.Context, schoolID uuid.UUID, req CreatePresetRequest) (*BalancePresetResponse, error) {
	existing, err := s.presetRepo.FindByNameForSchool(ctx, schoolID, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A preset with this name already exists")
	}

	preset, err := billing.NewBalancePreset(schoolID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.presetRepo.Save(ctx, preset); err != nil {
		return nil, err
	}
	return toBalancePresetResponse(preset), nil
}

// ListPresets returns all presets of a school
func (s *PresetService) ListPresets(ctx context.Context, schoolID uuid.UUID) ([]BalancePresetResponse, error) {
	presets, err := s.presetRepo.FindBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	responses := make([]BalancePresetResponse, 0, len(presets))
	for i := range presets {
		responses = append(responses, *toBalancePresetResponse(&presets[i]))
	}
	return responses, nil
}

// DeletePreset removes a preset
func (s *PresetService) DeletePreset(ctx context.Context, schoolID, id uuid.UUID) error {
	preset, err := s.presetRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if preset == nil || preset.SchoolID != schoolID {
		return shared.NewDomainError("NOT_FOUND", "Preset not found")
	}
	return s.presetRepo.Delete(ctx, id)
}
