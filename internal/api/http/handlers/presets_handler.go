package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/repository"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// PresetsHandler manages saved list-filter presets for the authenticated
// subject.
type PresetsHandler struct {
	presets *service.PresetService
}

// NewPresetsHandler constructs handler.
func NewPresetsHandler(presets *service.PresetService) *PresetsHandler {
	return &PresetsHandler{presets: presets}
}

// Save PUT /presets.
func (h *PresetsHandler) Save(c *fiber.Ctx) error {
	subjectID, err := requireSubjectID(c)
	if err != nil {
		return err
	}
	var req dto.SavePresetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	preset := repository.FilterPreset{
		Name:       req.Name,
		Statuses:   req.Statuses,
		Categories: req.Categories,
		Priorities: req.Priorities,
		AssignedTo: req.AssignedTo,
		Search:     req.Search,
	}
	if err := h.presets.Save(c.Context(), subjectID, preset); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": preset})
}

// List GET /presets.
func (h *PresetsHandler) List(c *fiber.Ctx) error {
	subjectID, err := requireSubjectID(c)
	if err != nil {
		return err
	}
	presets, err := h.presets.List(c.Context(), subjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": presets})
}

// Delete DELETE /presets/:name.
func (h *PresetsHandler) Delete(c *fiber.Ctx) error {
	subjectID, err := requireSubjectID(c)
	if err != nil {
		return err
	}
	if err := h.presets.Delete(c.Context(), subjectID, c.Params("name")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func requireSubjectID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	id := principal.SubjectID()
	if id == "" {
		return "", apperrors.NewUnauthorized("unknown subject")
	}
	return id, nil
}
