package service

import (
	"context"
	"sync"
	"time"

	"diamond-custody-gateway/internal/core/domain"
	"diamond-custody-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

const auditWriteTimeout = 5 * time.Second

// AuditService writes audit entries to the log and, when configured, to a
// repository. Writes never block the request path.
type AuditService struct {
	repo     ports.AuditRepository
	log      zerolog.Logger
	inflight sync.WaitGroup
}

// NewAuditService creates a new audit service.
// If repo is nil, audit logs are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

// Log records an audit entry asynchronously (fire-and-forget).
func (s *AuditService) Log(ctx context.Context, entry *domain.AuditLog) {
	if entry == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ev := s.log.Info().
			Str("action", string(entry.Action)).
			Str("resource_type", entry.ResourceType).
			Str("resource_id", entry.ResourceID).
			Str("ip", entry.IPAddress)
		if entry.MerchantID != nil {
			ev = ev.Str("merchant_id", *entry.MerchantID)
		}
		ev.Msg("audit")

		if s.repo == nil {
			return
		}
		// Detached from the request so a finished response does not cancel the write.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
		defer cancel()
		if err := s.repo.Create(writeCtx, entry); err != nil {
			s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
		}
	}()
}

// Wait blocks until pending writes finish or ctx is done.
func (s *AuditService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
