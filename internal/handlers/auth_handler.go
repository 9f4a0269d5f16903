package handlers

import (
	"errors"

	"quiz-admin/internal/middleware"
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	responder
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger *logrus.Logger, devMode bool) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger, devMode: devMode},
		service:   service,
	}
}

// Init godoc
// @Summary Create the first administrator
// @Description Creates the default administrator account. Fails once any administrator exists.
// @Tags auth
// @Produce json
// @Success 201 {object} utils.StandardResponse{data=InitResponse} "Administrator created"
// @Failure 409 {object} utils.StandardResponse "Already initialized"
// @Router /auth/init [post]
func (h *AuthHandler) Init(c *fiber.Ctx) error {
	admin, err := h.service.Initialize(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Administrator not found")
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Administrator created, change the default password", InitResponse{
		Username: admin.Username,
	})
}

// Login godoc
// @Summary Log in
// @Description Exchanges administrator credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} utils.StandardResponse{data=services.LoginResult} "Token issued"
// @Failure 400 {object} utils.StandardResponse "Missing username or password"
// @Failure 401 {object} utils.StandardResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, err, "Administrator not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Verify godoc
// @Summary Verify token
// @Description Reports whether the bearer token is still valid
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=VerifyResponse} "Token is valid"
// @Failure 401 {object} utils.StandardResponse "Missing or invalid token"
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Token is valid", VerifyResponse{
		Valid: true,
		User:  *admin,
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Changes the password of the logged in administrator
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param passwords body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} utils.StandardResponse "Password changed"
// @Failure 400 {object} utils.StandardResponse "Validation error"
// @Failure 401 {object} utils.StandardResponse "Wrong current password"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	admin, ok := middleware.CurrentAdmin(c)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	err := h.service.ChangePassword(c.UserContext(), admin.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Current password is incorrect")
		}
		return h.fail(c, err, "Administrator not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Password changed successfully", nil)
}
