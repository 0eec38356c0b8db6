package dto

// SavePresetRequest payload for saved list filters.
type SavePresetRequest struct {
	Name       string   `json:"name" validate:"required"`
	Statuses   []string `json:"statuses"`
	Categories []string `json:"categories"`
	Priorities []string `json:"priorities"`
	AssignedTo string   `json:"assigned_to"`
	Search     string   `json:"search"`
}
