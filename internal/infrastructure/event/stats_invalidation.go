package event

import (
	"context"

	"go.uber.org/zap"

	appbilling "github.com/schoolpay/backend/internal/application/billing"
	"github.com/schoolpay/backend/internal/domain/billing"
	"github.com/schoolpay/backend/internal/domain/shared"
)

// StatsInvalidationHandler drops a school's cached fee statistics
// whenever one of its invoices changes
type StatsInvalidationHandler struct {
	cache  appbilling.StatsCache
	logger *zap.Logger
}

// NewStatsInvalidationHandler creates a handler bound to a stats cache
func NewStatsInvalidationHandler(cache appbilling.StatsCache, logger *zap.Logger) *StatsInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsInvalidationHandler{cache: cache, logger: logger}
}

// Handle invalidates the cache for the event's school
func (h *StatsInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.cache.InvalidateSchool(ctx, event.SchoolID())
	h.logger.Debug("stats cache invalidated",
		zap.String("school_id", event.SchoolID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// EventTypes lists the invoice lifecycle events that affect the stats
func (h *StatsInvalidationHandler) EventTypes() []string {
	return []string{
		billing.InvoiceGeneratedEventType,
		billing.InvoiceRegeneratedEventType,
		billing.InvoicePaymentAppliedEventType,
	}
}

// Ensure StatsInvalidationHandler implements EventHandler
var _ shared.EventHandler = (*StatsInvalidationHandler)(nil)
