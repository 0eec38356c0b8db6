package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// FilterPreset is a named, client-owned set of list filters. Presets are
// presentation-layer state: loaded and saved at session boundaries, never
// authoritative for any domain rule.
type FilterPreset struct {
	Name       string   `json:"name"`
	Statuses   []string `json:"statuses,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Priorities []string `json:"priorities,omitempty"`
	AssignedTo string   `json:"assigned_to,omitempty"`
	Search     string   `json:"search,omitempty"`
}

// FilterPresetRepository stores presets per subject in Redis.
type FilterPresetRepository interface {
	Save(ctx context.Context, subjectID string, preset FilterPreset) error
	List(ctx context.Context, subjectID string) ([]FilterPreset, error)
	Delete(ctx context.Context, subjectID, name string) error
}

type filterPresetRepository struct {
	client *redis.Client
}

// NewFilterPresetRepository builds a Redis-backed preset store.
func NewFilterPresetRepository(client *redis.Client) FilterPresetRepository {
	return &filterPresetRepository{client: client}
}

func presetKey(subjectID string) string {
	return "filter_presets:" + subjectID
}

func (r *filterPresetRepository) Save(ctx context.Context, subjectID string, preset FilterPreset) error {
	payload, err := json.Marshal(preset)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, presetKey(subjectID), preset.Name, payload).Err()
}

func (r *filterPresetRepository) List(ctx context.Context, subjectID string) ([]FilterPreset, error) {
	values, err := r.client.HGetAll(ctx, presetKey(subjectID)).Result()
	if err != nil {
		return nil, err
	}
	presets := make([]FilterPreset, 0, len(values))
	for _, raw := range values {
		var preset FilterPreset
		if err := json.Unmarshal([]byte(raw), &preset); err != nil {
			continue
		}
		presets = append(presets, preset)
	}
	return presets, nil
}

func (r *filterPresetRepository) Delete(ctx context.Context, subjectID, name string) error {
	return r.client.HDel(ctx, presetKey(subjectID), name).Err()
}
