package handler

import (
	"diamond-custody-gateway/internal/adapter/http/dto"
	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// ApprovalHandler issues and checks QR approval tokens outside a loan flow.
type ApprovalHandler struct {
	custodySvc ports.CustodyService
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(custodySvc ports.CustodyService) *ApprovalHandler {
	return &ApprovalHandler{custodySvc: custodySvc}
}

// Issue handles POST /api/v1/approvals.
func (h *ApprovalHandler) Issue(c *gin.Context) {
	var req dto.IssueApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.custodySvc.IssueApproval(c.Request.Context(), domain.ApprovalAction(req.Type), req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewApprovalResponse(result))
}

// Verify handles POST /api/v1/approvals/verify. An invalid token is a
// successful answer with valid=false, not an error.
func (h *ApprovalHandler) Verify(c *gin.Context) {
	var req dto.VerifyApprovalRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.custodySvc.VerifyApproval(c.Request.Context(), req.Token, req.Hash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewVerifyApprovalResponse(v))
}
