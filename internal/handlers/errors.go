package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"quiz-admin/internal/middleware"
	"quiz-admin/internal/models"
	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// responder turns service errors into StandardResponse replies.
type responder struct {
	logger  *logrus.Logger
	devMode bool
}

// fail maps err to a status code. notFound is the message used for services.ErrNotFound.
func (r responder) fail(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, services.ErrFileTooLarge):
		return utils.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrValidation):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, notFound)
	case errors.Is(err, services.ErrNotAvailable):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Package not available")
	case errors.Is(err, services.ErrNoFile):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found")
	case errors.Is(err, services.ErrFileMissing):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "File not found on server")
	case errors.Is(err, services.ErrAlreadyInitialized):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Administrator already initialized")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrUnauthorized):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	r.logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("Request failed")

	detail := ""
	if r.devMode {
		detail = err.Error()
	}
	return utils.ErrorWithDetailResponse(c, fiber.StatusInternalServerError, "Internal server error", detail)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Params("id"))
	}
	return uint(id), nil
}

func languageParam(c *fiber.Ctx) (models.Language, error) {
	lang, err := models.ParseLanguage(c.Params("language"))
	if err != nil {
		return "", services.ErrInvalidLanguage
	}
	return lang, nil
}

// readUpload opens the multipart "file" field. The returned closer must always be called.
func readUpload(c *fiber.Ctx) (*services.Upload, func(), error) {
	noop := func() {}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, noop, services.ErrFileRequired
	}
	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	upload := &services.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Content:     file,
	}
	return upload, func() { file.Close() }, nil
}

// sendFile streams a stored workbook as an attachment under its original name.
// fasthttp closes body once the response is written.
func sendFile(c *fiber.Ctx, slot *models.FileSlot, body io.ReadCloser, size int64) error {
	c.Attachment(slot.FileName)
	return c.SendStream(body, int(size))
}

func uploaderID(c *fiber.Ctx) *uint {
	if admin, ok := middleware.CurrentAdmin(c); ok {
		id := admin.ID
		return &id
	}
	return nil
}
