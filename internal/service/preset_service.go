package service

import (
	"context"
	"strings"

	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// PresetService manages per-subject saved list filters. Presets are pure
// convenience state and carry no authorization weight: applying one still runs
// through the normal listing checks.
type PresetService struct {
	presets repository.FilterPresetRepository
}

// NewPresetService constructs the service.
func NewPresetService(presets repository.FilterPresetRepository) *PresetService {
	return &PresetService{presets: presets}
}

// Save upserts a named preset for the subject.
func (s *PresetService) Save(ctx context.Context, subjectID string, preset repository.FilterPreset) error {
	preset.Name = strings.TrimSpace(preset.Name)
	if preset.Name == "" {
		return apperrors.NewValidationError("preset name required", map[string]any{"field": "name"})
	}
	return apperrors.MapError(s.presets.Save(ctx, subjectID, preset))
}

// List returns all presets stored for the subject.
func (s *PresetService) List(ctx context.Context, subjectID string) ([]repository.FilterPreset, error) {
	presets, err := s.presets.List(ctx, subjectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return presets, nil
}

// Delete removes a preset by name. Deleting a missing preset is a no-op.
func (s *PresetService) Delete(ctx context.Context, subjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.NewValidationError("preset name required", map[string]any{"field": "name"})
	}
	return apperrors.MapError(s.presets.Delete(ctx, subjectID, name))
}
