package handler

import (
	"net/http"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
)

type IngredientHandler struct{ svc service.StockService }

func NewIngredientHandler(svc service.StockService) *IngredientHandler {
	return &IngredientHandler{svc: svc}
}

// Create godoc
// @Summary Registers an inventory ingredient
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateIngredientRequest true "Ingredient data"
// @Success 201 {object} dto.IngredientResponse
// @Router /v1/ingredients [post]
func (h *IngredientHandler) Create(c *gin.Context) {
	var req dto.CreateIngredientRequest
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

func (h *IngredientHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Adjust godoc
// @Summary Applies a signed stock delta and records the movement
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ingredient ID"
// @Param body body dto.AdjustStockRequest true "Signed delta and reason"
// @Success 200 {object} dto.IngredientResponse
// @Failure 422 {object} map[string]interface{}
// @Router /v1/ingredients/{id}/adjust [post]
func (h *IngredientHandler) Adjust(c *gin.Context) {
	id, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), id, actor, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *IngredientHandler) Deactivate(c *gin.Context) {
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
