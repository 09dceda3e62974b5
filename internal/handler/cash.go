package handler

import (
	"net/http"
	"strconv"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
)

type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// Open godoc
// @Summary Opens a cash session on a register
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} map[string]interface{}
// @Router /v1/cash/sessions [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Record godoc
// @Summary Records a transaction in an open session's ledger
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.RecordTransactionRequest true "Transaction"
// @Success 201 {object} dto.TransactionResponse
// @Failure 422 {object} map[string]interface{}
// @Router /v1/cash/sessions/{id}/transactions [post]
func (h *CashHandler) Record(c *gin.Context) {
	sessionID, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Record(c.Request.Context(), sessionID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Close godoc
// @Summary Closes a session with a denomination count
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body dto.CloseSessionRequest true "Denomination count"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 422 {object} map[string]interface{}
// @Router /v1/cash/sessions/{id}/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	sessionID, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), sessionID, operatorID, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Report godoc
// @Summary Session report with ledger, counts and reconciliation
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionReportResponse
// @Failure 404 {object} map[string]interface{}
// @Router /v1/cash/sessions/{id}/report [get]
func (h *CashHandler) Report(c *gin.Context) {
	sessionID, parsed := pathUUID(c, "id")
	if !parsed {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), sessionID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// Active returns the caller's currently open session, if any.
func (h *CashHandler) Active(c *gin.Context) {
	operatorID, authed := actorID(c)
	if !authed {
		fail(c, apierror.Authentication("authentication required"))
		return
	}
	resp, err := h.svc.Active(c.Request.Context(), operatorID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, resp)
}

// History returns a paginated list of sessions, newest first.
func (h *CashHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"sessions": sessions, "total": total, "page": page, "limit": limit})
}
