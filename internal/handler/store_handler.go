package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"osa-dashboard/internal/middleware"
	"osa-dashboard/internal/model"
	"osa-dashboard/internal/service"
)

type StoreHandler struct {
	service service.StoreService
}

func NewStoreHandler(s service.StoreService) *StoreHandler {
	return &StoreHandler{service: s}
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// GET /api/v1/stores?q=&limit=
func (h *StoreHandler) GetStores(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	stores, err := h.service.List(sess.Context(c.UserContext()), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stores)
}

// GET /api/v1/stores/:id
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid store ID")
	}

	store, err := h.service.Get(sess.Context(c.UserContext()), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(store)
}

// POST /api/v1/stores
func (h *StoreHandler) CreateStore(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}

	var in model.StoreInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	store, err := h.service.Create(sess.Context(c.UserContext()), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// PUT /api/v1/stores/:id
func (h *StoreHandler) UpdateStore(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid store ID")
	}

	var in model.StoreInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	store, err := h.service.Update(sess.Context(c.UserContext()), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(store)
}

// DELETE /api/v1/stores/:id
func (h *StoreHandler) DeleteStore(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid store ID")
	}

	if err := h.service.Delete(sess.Context(c.UserContext()), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
