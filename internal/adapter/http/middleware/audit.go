package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
}

// Keyed by method and gin route pattern.
var auditRoutes = map[string]auditRoute{
	"POST /api/v1/wallet":            {domain.AuditActionEnableCustody, "wallet"},
	"POST /api/v1/assets":            {domain.AuditActionRegisterAsset, "asset"},
	"POST /api/v1/loans":             {domain.AuditActionRequestLoan, "loan"},
	"POST /api/v1/loans/:id/approve": {domain.AuditActionApproveLoan, "loan"},
	"POST /api/v1/loans/:id/cancel":  {domain.AuditActionCancelLoan, "loan"},
	"POST /api/v1/loans/:id/return":  {domain.AuditActionReturnAsset, "loan"},
	"POST /api/v1/offers":            {domain.AuditActionPlaceOffer, "offer"},
	"POST /api/v1/offers/:id/accept": {domain.AuditActionAcceptOffer, "offer"},
	"POST /api/v1/offers/:id/reject": {domain.AuditActionRejectOffer, "offer"},
	"POST /api/v1/approvals":         {domain.AuditActionIssueApproval, "approval"},
}

// AuditLog creates an audit middleware that logs successful write operations.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			return
		}

		route, ok := mapRouteToAction(c.Request.Method, c.FullPath())
		if !ok {
			return
		}

		var merchantID *string
		if mid, ok := MerchantID(c); ok {
			merchantID = &mid
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			MerchantID:   merchantID,
			Action:       route.action,
			ResourceType: route.resourceType,
			ResourceID:   c.Param("id"),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(method, fullPath string) (auditRoute, bool) {
	route, ok := auditRoutes[method+" "+fullPath]
	return route, ok
}
