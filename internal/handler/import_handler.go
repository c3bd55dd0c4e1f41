package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/service"
)

type ImportHandler struct {
	service service.ImportService
}

func NewImportHandler(s service.ImportService) *ImportHandler {
	return &ImportHandler{service: s}
}

// ImportExcel checks and forwards a spreadsheet upload (form field "file")
// POST /api/v1/import/excel
func (h *ImportHandler) ImportExcel(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "Selecciona un archivo .xlsx o .xls")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "Unable to read upload")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "Unable to read upload")
	}

	res, err := h.service.Import(sess.Context(c.UserContext()), fh.Filename, content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
