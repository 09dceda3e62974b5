package handler

import (
	"net/http"
	"time"

	"restopos/internal/apierror"
	"restopos/internal/config"
	"restopos/internal/dto"
	"restopos/internal/infra"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
)

type TreasuryHandler struct {
	svc service.TreasuryService
	cfg *config.Config
}

func NewTreasuryHandler(svc service.TreasuryService, cfg *config.Config) *TreasuryHandler {
	return &TreasuryHandler{svc: svc, cfg: cfg}
}

// Transfer godoc
// @Summary Transfers a closed session's net cash to treasury custody
// @Tags treasury
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateTransferRequest true "Transfer request"
// @Success 201 {object} dto.TransferResponse
// @Failure 422 {object} map[string]interface{}
// @Router /v1/cash/transfers [post]
func (h *TreasuryHandler) Transfer(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}

	resp, err := h.svc.Transfer(c.Request.Context(), actor, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Confirm godoc
// @Summary Confirms receipt of a transfer and records the signed difference
// @Tags treasury
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transfer ID"
// @Param body body dto.ConfirmTransferRequest true "Received amount"
// @Success 200 {object} dto.TransferResponse
// @Failure 422 {object} map[string]interface{}
// @Router /v1/cash/transfers/{id}/confirm [post]
func (h *TreasuryHandler) Confirm(c *gin.Context) {
	transferID, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	var req dto.ConfirmTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	receivedBy, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}

	resp, err := h.svc.Confirm(c.Request.Context(), transferID, receivedBy, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Pending lists transfers awaiting receipt confirmation, in creation order.
func (h *TreasuryHandler) Pending(c *gin.Context) {
	resp, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Consolidation aggregates one calendar day of transfers.
func (h *TreasuryHandler) Consolidation(c *gin.Context) {
	day, done := h.parseDay(c)
	if done {
		return
	}
	resp, err := h.svc.DailyConsolidation(c.Request.Context(), day)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// ConsolidationPDF renders the day's consolidation as a PDF download.
func (h *TreasuryHandler) ConsolidationPDF(c *gin.Context) {
	day, done := h.parseDay(c)
	if done {
		return
	}
	resp, err := h.svc.DailyConsolidation(c.Request.Context(), day)
	if err != nil {
		fail(c, err)
		return
	}
	path, err := infra.GenerateConsolidationPDF(resp, h.cfg.ReportStoragePath)
	if err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(path, "consolidation_"+resp.Date+".pdf")
}

func (h *TreasuryHandler) parseDay(c *gin.Context) (time.Time, bool) {
	raw := c.DefaultQuery("date", time.Now().UTC().Format("2006-01-02"))
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fail(c, apierror.Validation(map[string]string{"date": "must be YYYY-MM-DD"}))
		return time.Time{}, true
	}
	return day, false
}
