package handler

import (
	"net/http"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ─── Establishments ──────────────────────────────────────────────────────────

type EstablishmentHandler struct{ svc service.EstablishmentService }

func NewEstablishmentHandler(svc service.EstablishmentService) *EstablishmentHandler {
	return &EstablishmentHandler{svc: svc}
}

func (h *EstablishmentHandler) Create(c *gin.Context) {
	var req dto.CreateEstablishmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *EstablishmentHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *EstablishmentHandler) Update(c *gin.Context) {
	id, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	var req dto.UpdateEstablishmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *EstablishmentHandler) Deactivate(c *gin.Context) {
	id, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deactivated": true})
}

// ─── Dining tables ───────────────────────────────────────────────────────────

type TableHandler struct{ svc service.TableService }

func NewTableHandler(svc service.TableService) *TableHandler { return &TableHandler{svc: svc} }

func (h *TableHandler) Create(c *gin.Context) {
	var req dto.CreateTableRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *TableHandler) List(c *gin.Context) {
	filter, failed := queryEstablishment(c)
	if failed {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *TableHandler) Deactivate(c *gin.Context) {
	id, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deactivated": true})
}

// ─── Cash registers ──────────────────────────────────────────────────────────

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Create godoc
// @Summary Creates a cash register within an establishment
// @Tags venue
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateRegisterRequest true "Register data"
// @Success 201 {object} dto.RegisterResponse
// @Failure 409 {object} map[string]interface{}
// @Router /v1/registers [post]
func (h *RegisterHandler) Create(c *gin.Context) {
	var req dto.CreateRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *RegisterHandler) List(c *gin.Context) {
	filter, failed := queryEstablishment(c)
	if failed {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *RegisterHandler) Deactivate(c *gin.Context) {
	id, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deactivated": true})
}

// queryEstablishment parses the optional establishment_id query filter.
// The bool result reports whether the request has already been failed.
func queryEstablishment(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("establishment_id")
	if raw == "" {
		return nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fail(c, apierror.Validation(map[string]string{"establishment_id": "must be a valid uuid"}))
		return nil, true
	}
	return &id, false
}
