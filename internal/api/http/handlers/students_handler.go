package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/api/dto"
	"github.com/campus-kit/complaint-service/internal/service"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// StudentsHandler exposes auth endpoints for students.
type StudentsHandler struct {
	auth *service.AuthService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(authService *service.AuthService) *StudentsHandler {
	return &StudentsHandler{auth: authService}
}

// Register handles POST /auth/students/register.
func (h *StudentsHandler) Register(c *fiber.Ctx) error {
	var req dto.StudentRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	student, token, exp, err := h.auth.RegisterStudent(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"student": fiber.Map{
				"id":    student.ID,
				"name":  student.Name,
				"email": student.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/students/login.
func (h *StudentsHandler) Login(c *fiber.Ctx) error {
	var req dto.StudentLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	student, token, exp, err := h.auth.LoginStudent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"student": fiber.Map{
				"id":    student.ID,
				"name":  student.Name,
				"email": student.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
