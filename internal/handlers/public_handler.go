package handlers

import (
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// PublicHandler serves the consumer app. Only active packages are visible.
type PublicHandler struct {
	responder
	packages  services.PackageService
	questions services.ResourceService
	phrases   services.ResourceService
}

func NewPublicHandler(packages services.PackageService, questions, phrases services.ResourceService, logger *logrus.Logger, devMode bool) *PublicHandler {
	return &PublicHandler{
		responder: responder{logger: logger, devMode: devMode},
		packages:  packages,
		questions: questions,
		phrases:   phrases,
	}
}

// GetActivePackages godoc
// @Summary List active packages
// @Tags public
// @Produce json
// @Success 200 {object} utils.StandardResponse{data=[]models.PublicPackage} "Active packages"
// @Router /public/packages [get]
func (h *PublicHandler) GetActivePackages(c *fiber.Ctx) error {
	packages, err := h.packages.ListActive(c.UserContext())
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Packages retrieved successfully", packages)
}

// GetActivePackage godoc
// @Summary Get active package
// @Tags public
// @Produce json
// @Param id path int true "Package ID"
// @Success 200 {object} utils.StandardResponse{data=models.PublicPackage} "Package"
// @Failure 404 {object} utils.StandardResponse "Package not found or not available"
// @Router /public/packages/{id} [get]
func (h *PublicHandler) GetActivePackage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}

	pkg, err := h.packages.GetActive(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Package retrieved successfully", pkg)
}

// DownloadPackageFile godoc
// @Summary Download package workbook
// @Tags public
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Package ID"
// @Param language path string true "Language" Enums(KZ, RU)
// @Success 200 {file} file "Excel workbook"
// @Failure 404 {object} utils.StandardResponse "Package or file not found"
// @Router /public/packages/{id}/files/{language} [get]
func (h *PublicHandler) DownloadPackageFile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}
	lang, err := languageParam(c)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	slot, body, size, err := h.packages.OpenActiveFile(c.UserContext(), id, lang)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return sendFile(c, slot, body, size)
}

// DownloadQuestions godoc
// @Summary Download question bank
// @Tags public
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param language path string true "Language" Enums(KZ, RU)
// @Success 200 {file} file "Excel workbook"
// @Failure 404 {object} utils.StandardResponse "File not found"
// @Router /public/questions/files/{language} [get]
func (h *PublicHandler) DownloadQuestions(c *fiber.Ctx) error {
	return h.downloadResource(c, h.questions)
}

// DownloadPhrases godoc
// @Summary Download phrases
// @Tags public
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param language path string true "Language" Enums(KZ, RU)
// @Success 200 {file} file "Excel workbook"
// @Failure 404 {object} utils.StandardResponse "File not found"
// @Router /public/phrases/files/{language} [get]
func (h *PublicHandler) DownloadPhrases(c *fiber.Ctx) error {
	return h.downloadResource(c, h.phrases)
}

func (h *PublicHandler) downloadResource(c *fiber.Ctx, resource services.ResourceService) error {
	lang, err := languageParam(c)
	if err != nil {
		return h.fail(c, err, "File not found")
	}

	slot, body, size, err := resource.Open(c.UserContext(), lang)
	if err != nil {
		return h.fail(c, err, "File not found")
	}

	return sendFile(c, slot, body, size)
}
