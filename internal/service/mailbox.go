package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/metrics"
)

// ContactResolver looks up the current emergency contact
type ContactResolver interface {
	EmergencyContact(ctx context.Context) (string, error)
}

// CommandMailbox is the single-slot SOS outbox polled by the GSM actuator.
//
// States: empty -> pending (Trigger, overwriting any pending command)
// -> delivered | expired -> empty. At most one command is active at a time,
// and a command is handed out to at most one poller.
type CommandMailbox struct {
	ttl      time.Duration
	resolver ContactResolver
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu   sync.Mutex
	slot domain.SOSCommand
}

// NewCommandMailbox creates an empty mailbox; resolver may be nil
func NewCommandMailbox(ttl time.Duration, resolver ContactResolver, logger *zap.Logger, m *metrics.Metrics) *CommandMailbox {
	return &CommandMailbox{
		ttl:      ttl,
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

// Trigger replaces the slot with a new pending command stamped now
func (mb *CommandMailbox) Trigger(message, contact string, now time.Time) domain.SOSCommand {
	cmd := domain.SOSCommand{
		ID:            uuid.New().String(),
		Active:        true,
		Message:       message,
		TargetContact: contact,
		CreatedAt:     now,
	}

	mb.mu.Lock()
	replaced := mb.slot.Active
	mb.slot = cmd
	mb.mu.Unlock()

	mb.metrics.SOS("queued")
	mb.logger.Warn("sos command queued",
		zap.String("command_id", cmd.ID),
		zap.Bool("replaced_pending", replaced),
	)
	return cmd
}

// Queue triggers a command carrying the emergency contact known right now.
// The contact is only used if the lookup at poll time fails.
func (mb *CommandMailbox) Queue(ctx context.Context, message string, now time.Time) domain.SOSCommand {
	return mb.Trigger(message, mb.resolveContact(ctx, domain.SOSCommand{}), now)
}

// Poll drains the slot. A pending command younger than the TTL is handed
// out exactly once; an older one is expired. The emergency contact is
// resolved after the slot is claimed, so profile edits made between
// trigger and poll are honored, including a cleared contact.
func (mb *CommandMailbox) Poll(ctx context.Context, now time.Time) domain.SOSPollResult {
	mb.mu.Lock()
	if !mb.slot.Active {
		mb.mu.Unlock()
		return domain.SOSPollResult{Trigger: false}
	}
	mb.slot.Active = false
	cmd := mb.slot
	mb.mu.Unlock()

	if age := now.Sub(cmd.CreatedAt); age > mb.ttl {
		mb.metrics.SOS("expired")
		mb.logger.Warn("sos command expired before pickup",
			zap.String("command_id", cmd.ID),
			zap.Duration("age", age),
		)
		return domain.SOSPollResult{Trigger: false}
	}

	contact := mb.resolveContact(ctx, cmd)

	mb.metrics.SOS("delivered")
	mb.logger.Info("sos command delivered", zap.String("command_id", cmd.ID))

	res := domain.SOSPollResult{Trigger: true, Message: cmd.Message}
	if contact != "" {
		res.TargetContact = &contact
	}
	return res
}

// Pending returns the active, unexpired command without draining it
func (mb *CommandMailbox) Pending(now time.Time) (domain.SOSCommand, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if !mb.slot.Active || now.Sub(mb.slot.CreatedAt) > mb.ttl {
		return domain.SOSCommand{}, false
	}
	return mb.slot, true
}

func (mb *CommandMailbox) resolveContact(ctx context.Context, cmd domain.SOSCommand) string {
	if mb.resolver == nil {
		return cmd.TargetContact
	}
	contact, err := mb.resolver.EmergencyContact(ctx)
	if err != nil {
		mb.logger.Warn("emergency contact lookup failed",
			zap.String("command_id", cmd.ID),
			zap.Error(err),
		)
		return cmd.TargetContact
	}
	return contact
}
