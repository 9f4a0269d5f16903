package handlers

import (
	"quiz-admin/internal/models"
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const packageNotFound = "Package not found"

type PackageHandler struct {
	responder
	service services.PackageService
}

func NewPackageHandler(service services.PackageService, logger *logrus.Logger, devMode bool) *PackageHandler {
	return &PackageHandler{
		responder: responder{logger: logger, devMode: devMode},
		service:   service,
	}
}

// GetAllPackages godoc
// @Summary List packages
// @Description Every package, newest first, with its KZ and RU file slots
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=[]models.PackageWithFiles} "List of packages"
// @Failure 401 {object} utils.StandardResponse "Unauthorized"
// @Router /packages [get]
func (h *PackageHandler) GetAllPackages(c *fiber.Ctx) error {
	packages, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Packages retrieved successfully", packages)
}

// GetPackageByID godoc
// @Summary Get package
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Package ID"
// @Success 200 {object} utils.StandardResponse{data=models.PackageWithFiles} "Package details"
// @Failure 400 {object} utils.StandardResponse "Invalid package ID"
// @Failure 404 {object} utils.StandardResponse "Package not found"
// @Router /packages/{id} [get]
func (h *PackageHandler) GetPackageByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}

	pkg, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Package retrieved successfully", pkg)
}

// CreatePackage godoc
// @Summary Create package
// @Description Missing names fall back to name, iconColor to #4CAF50, price to 1000 and isActive to true
// @Tags packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param package body PackageRequest true "Package"
// @Success 201 {object} utils.StandardResponse{data=models.PackageWithFiles} "Package created"
// @Failure 400 {object} utils.StandardResponse "Validation error"
// @Router /packages [post]
func (h *PackageHandler) CreatePackage(c *fiber.Ctx) error {
	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	pkg, err := h.service.Create(c.UserContext(), req.toInput())
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, "Package created successfully", pkg)
}

// UpdatePackage godoc
// @Summary Update package
// @Description Only the fields present in the body are changed
// @Tags packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Package ID"
// @Param package body PackageRequest true "Fields to change"
// @Success 200 {object} utils.StandardResponse{data=models.PackageWithFiles} "Package updated"
// @Failure 400 {object} utils.StandardResponse "Validation error"
// @Failure 404 {object} utils.StandardResponse "Package not found"
// @Router /packages/{id} [put]
func (h *PackageHandler) UpdatePackage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}

	var req PackageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	pkg, err := h.service.Update(c.UserContext(), id, req.toInput())
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Package updated successfully", pkg)
}

// DeletePackage godoc
// @Summary Delete package
// @Description Deletes the package together with both of its files
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Package ID"
// @Success 200 {object} utils.StandardResponse "Package deleted"
// @Failure 404 {object} utils.StandardResponse "Package not found"
// @Router /packages/{id} [delete]
func (h *PackageHandler) DeletePackage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Package deleted successfully", nil)
}

// UploadPackageFile godoc
// @Summary Upload package workbook
// @Description Stores the Excel file for one language, replacing any previous file for that language
// @Tags packages
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Package ID"
// @Param language formData string true "Language" Enums(KZ, RU)
// @Param file formData file true "Excel workbook (.xlsx, .xls), up to 10MB"
// @Success 200 {object} utils.StandardResponse{data=models.PackageWithFiles} "File uploaded"
// @Failure 400 {object} utils.StandardResponse "Validation error"
// @Failure 404 {object} utils.StandardResponse "Package not found"
// @Failure 413 {object} utils.StandardResponse "File too large"
// @Router /packages/{id}/upload [post]
func (h *PackageHandler) UploadPackageFile(c *fiber.Ctx) error {
	defer c.Request().RemoveMultipartFormFiles()

	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}

	lang, err := models.ParseLanguage(c.FormValue("language"))
	if err != nil {
		return h.fail(c, services.ErrInvalidLanguage, packageNotFound)
	}

	upload, closeUpload, err := readUpload(c)
	defer closeUpload()
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	pkg, err := h.service.UploadFile(c.UserContext(), id, lang, upload, uploaderID(c))
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "File uploaded successfully", pkg)
}

// DeletePackageFile godoc
// @Summary Delete package workbook
// @Description Removes the file for one language. Deleting an empty slot succeeds.
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Package ID"
// @Param language path string true "Language" Enums(KZ, RU)
// @Success 200 {object} utils.StandardResponse{data=models.PackageWithFiles} "File deleted"
// @Failure 400 {object} utils.StandardResponse "Invalid language"
// @Failure 404 {object} utils.StandardResponse "Package not found"
// @Router /packages/{id}/file/{language} [delete]
func (h *PackageHandler) DeletePackageFile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid package ID")
	}
	lang, err := languageParam(c)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	pkg, err := h.service.DeleteFile(c.UserContext(), id, lang)
	if err != nil {
		return h.fail(c, err, packageNotFound)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "File deleted successfully", pkg)
}
