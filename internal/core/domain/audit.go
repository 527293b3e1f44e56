package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionEnableCustody AuditAction = "ENABLE_CUSTODY"
	AuditActionImportWallet  AuditAction = "IMPORT_WALLET"
	AuditActionRekeyVault    AuditAction = "REKEY_VAULT"
	AuditActionRegisterAsset AuditAction = "REGISTER_ASSET"
	AuditActionRequestLoan   AuditAction = "REQUEST_LOAN"
	AuditActionApproveLoan   AuditAction = "APPROVE_LOAN"
	AuditActionCancelLoan    AuditAction = "CANCEL_LOAN"
	AuditActionReturnAsset   AuditAction = "RETURN_ASSET"
	AuditActionPlaceOffer    AuditAction = "PLACE_OFFER"
	AuditActionAcceptOffer   AuditAction = "ACCEPT_OFFER"
	AuditActionRejectOffer   AuditAction = "REJECT_OFFER"
	AuditActionIssueApproval AuditAction = "ISSUE_APPROVAL"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	MerchantID   *string     `json:"merchant_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
