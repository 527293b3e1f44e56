package handler

import (
	"context"
	"math/big"

	"diamond-custody-gateway/internal/adapter/http/dto"
	"diamond-custody-gateway/internal/adapter/http/middleware"
	"diamond-custody-gateway/internal/core/ports"
	"diamond-custody-gateway/pkg/apperror"
	"diamond-custody-gateway/pkg/response"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// CustodyHandler exposes wallet, asset, loan and offer operations.
// Every state-changing call blocks until the ledger confirms or fails.
type CustodyHandler struct {
	custodySvc ports.CustodyService
}

// NewCustodyHandler creates a new CustodyHandler.
func NewCustodyHandler(custodySvc ports.CustodyService) *CustodyHandler {
	return &CustodyHandler{custodySvc: custodySvc}
}

// EnableCustody handles POST /api/v1/wallet.
func (h *CustodyHandler) EnableCustody(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	info, err := h.custodySvc.EnableCustody(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewWalletResponse(info))
}

// GetWallet handles GET /api/v1/wallet.
func (h *CustodyHandler) GetWallet(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	info, err := h.custodySvc.GetWallet(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewWalletResponse(info))
}

// GetBalance handles GET /api/v1/wallet/balance.
func (h *CustodyHandler) GetBalance(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	balance, err := h.custodySvc.GetBalance(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewBalanceResponse(balance))
}

// RegisterAsset handles POST /api/v1/assets.
func (h *CustodyHandler) RegisterAsset(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	var req dto.RegisterAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.custodySvc.RegisterAsset(c.Request.Context(), ports.RegisterAssetRequest{
		MerchantID:    merchantID,
		CertificateID: req.CertificateID,
		MetadataHash:  common.HexToHash(req.MetadataHash),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.AssetCreatedResponse{
		TokenID: result.TokenID.String(),
		TxHash:  result.TxHash.Hex(),
	})
}

// GetAsset handles GET /api/v1/assets/:id.
func (h *CustodyHandler) GetAsset(c *gin.Context) {
	tokenID, ok := pathID(c)
	if !ok {
		return
	}

	asset, err := h.custodySvc.GetAsset(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewAssetResponse(asset))
}

// RequestLoan handles POST /api/v1/loans. The caller is the lender; the
// response carries the approval QR the borrower must scan.
func (h *CustodyHandler) RequestLoan(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	var req dto.LoanRequest
	if !bindJSON(c, &req) {
		return
	}
	assetID, _ := dto.ParseUint256(req.AssetID)
	price, _ := dto.ParseUint256(req.Price)

	result, err := h.custodySvc.RequestLoan(c.Request.Context(), ports.LoanRequest{
		MerchantID: merchantID,
		AssetID:    assetID,
		Borrower:   common.HexToAddress(req.Borrower),
		Duration:   req.Duration,
		Price:      price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewLoanCreatedResponse(result))
}

// GetLoan handles GET /api/v1/loans/:id.
func (h *CustodyHandler) GetLoan(c *gin.Context) {
	loanID, ok := pathID(c)
	if !ok {
		return
	}

	loan, err := h.custodySvc.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewLoanResponse(loan))
}

// ApproveLoan handles POST /api/v1/loans/:id/approve.
func (h *CustodyHandler) ApproveLoan(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}
	loanID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ApproveLoanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.custodySvc.ApproveLoan(c.Request.Context(), ports.ApproveLoanRequest{
		MerchantID: merchantID,
		LoanID:     loanID,
		Token:      req.Token,
		Hash:       req.Hash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTxResponse(result))
}

// CancelLoan handles POST /api/v1/loans/:id/cancel.
func (h *CustodyHandler) CancelLoan(c *gin.Context) {
	h.transition(c, h.custodySvc.CancelLoan)
}

// ReturnAsset handles POST /api/v1/loans/:id/return.
func (h *CustodyHandler) ReturnAsset(c *gin.Context) {
	h.transition(c, h.custodySvc.ReturnAsset)
}

// PlaceOffer handles POST /api/v1/offers.
func (h *CustodyHandler) PlaceOffer(c *gin.Context) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}

	var req dto.PlaceOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	loanID, _ := dto.ParseUint256(req.LoanID)
	price, _ := dto.ParseUint256(req.Price)

	result, err := h.custodySvc.PlaceOffer(c.Request.Context(), ports.OfferRequest{
		MerchantID: merchantID,
		LoanID:     loanID,
		Price:      price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.OfferCreatedResponse{
		OfferID: result.OfferID.String(),
		TxHash:  result.TxHash.Hex(),
	})
}

// GetOffer handles GET /api/v1/offers/:id.
func (h *CustodyHandler) GetOffer(c *gin.Context) {
	offerID, ok := pathID(c)
	if !ok {
		return
	}

	offer, err := h.custodySvc.GetOffer(c.Request.Context(), offerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewOfferResponse(offer))
}

// AcceptOffer handles POST /api/v1/offers/:id/accept.
func (h *CustodyHandler) AcceptOffer(c *gin.Context) {
	h.transition(c, h.custodySvc.AcceptOffer)
}

// RejectOffer handles POST /api/v1/offers/:id/reject.
func (h *CustodyHandler) RejectOffer(c *gin.Context) {
	h.transition(c, h.custodySvc.RejectOffer)
}

type transitionFunc func(ctx context.Context, merchantID string, id *big.Int) (*ports.TxResult, error)

// transition runs a body-less state change on the resource named by :id.
func (h *CustodyHandler) transition(c *gin.Context, fn transitionFunc) {
	merchantID, ok := requireMerchant(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), merchantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTxResponse(result))
}

func requireMerchant(c *gin.Context) (string, bool) {
	merchantID, ok := middleware.MerchantID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return "", false
	}
	return merchantID, true
}

func pathID(c *gin.Context) (*big.Int, bool) {
	id, err := dto.ParseUint256(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id "+err.Error()))
		return nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	dto.SanitizeStruct(req)
	return true
}
