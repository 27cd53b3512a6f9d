package handler

import (
	"math"
	"net/http"
	"strconv"

	"assettrack/internal/apierror"
	"assettrack/internal/dto"
	"assettrack/internal/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the quantity and status mutations: split actions,
// returns, issuing reserved units, and partial or full removal.
type LedgerHandler struct {
	actions *service.ActionOrchestrator
	ledger  service.LedgerService
}

func NewLedgerHandler(actions *service.ActionOrchestrator, ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{actions: actions, ledger: ledger}
}

// Action handles POST /accessories/:id/actions. The body names a target
// status and an amount; the units move into a new derived record.
func (h *LedgerHandler) Action(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.actions.Perform(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Return handles POST /accessories/:id/return. The id is the derived record;
// its quantity merges back into the source and the record disappears.
func (h *LedgerHandler) Return(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.ledger.Return(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Issue handles POST /accessories/:id/issue, flipping a reserved record to issued.
func (h *LedgerHandler) Issue(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.ledger.IssueReserved(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /accessories/:id?amount=N. Amounts at or above the
// record quantity remove the record entirely; an omitted amount means full
// removal.
func (h *LedgerHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	amount := math.MaxInt // clamps to full deletion
	if raw, present := c.GetQuery("amount"); present {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Amount must be an integer"))
			return
		}
		amount = parsed
	}
	resp, svcErr := h.ledger.AdjustOrDelete(c.Request.Context(), actorFrom(c), id, amount)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}
