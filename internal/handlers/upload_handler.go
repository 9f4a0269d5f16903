package handlers

import (
	"fmt"

	"quiz-admin/internal/models"
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// UploadHandler manages one flat per-language resource: the question bank or the phrases.
type UploadHandler struct {
	responder
	service services.ResourceService
	label   string
}

func NewUploadHandler(service services.ResourceService, label string, logger *logrus.Logger, devMode bool) *UploadHandler {
	return &UploadHandler{
		responder: responder{logger: logger, devMode: devMode},
		service:   service,
		label:     label,
	}
}

// GetFiles godoc
// @Summary List uploaded files
// @Description One entry per language that currently has a file, newest first
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=[]models.FileSlot} "Uploaded files"
// @Router /public-questions [get]
// @Router /phrases [get]
func (h *UploadHandler) GetFiles(c *fiber.Ctx) error {
	files, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, "File not found")
	}
	if files == nil {
		files = []models.FileSlot{}
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf("%s files retrieved successfully", h.label), files)
}

// UploadFile godoc
// @Summary Upload a workbook
// @Description Stores the Excel file for one language, replacing any previous file for that language
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param language formData string true "Language" Enums(KZ, RU)
// @Param file formData file true "Excel workbook (.xlsx, .xls)"
// @Success 200 {object} utils.StandardResponse{data=models.FileSlot} "File uploaded"
// @Failure 400 {object} utils.StandardResponse "Validation error"
// @Failure 413 {object} utils.StandardResponse "File too large"
// @Router /public-questions/upload [post]
// @Router /phrases/upload [post]
func (h *UploadHandler) UploadFile(c *fiber.Ctx) error {
	defer c.Request().RemoveMultipartFormFiles()

	lang, err := models.ParseLanguage(c.FormValue("language"))
	if err != nil {
		return h.fail(c, services.ErrInvalidLanguage, "File not found")
	}

	upload, closeUpload, err := readUpload(c)
	defer closeUpload()
	if err != nil {
		return h.fail(c, err, "File not found")
	}

	slot, err := h.service.Upload(c.UserContext(), lang, upload, uploaderID(c))
	if err != nil {
		return h.fail(c, err, "File not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf("%s file uploaded successfully", h.label), slot)
}

// DeleteFile godoc
// @Summary Delete an uploaded workbook
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} utils.StandardResponse "File deleted"
// @Failure 404 {object} utils.StandardResponse "File not found"
// @Router /public-questions/{id} [delete]
// @Router /phrases/{id} [delete]
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid file ID")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, "File not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fmt.Sprintf("%s file deleted successfully", h.label), nil)
}
