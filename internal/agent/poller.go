package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

const defaultRemoteMessage = "Remote SOS Alert"

// ErrNoContact is returned when an SOS arrives before any emergency
// contact is known
var ErrNoContact = errors.New("agent: no emergency contact saved")

// Alert is one SMS to send
type Alert struct {
	Contact string
	Message string
}

// Dispatcher delivers an alert over the modem
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// LogDispatcher only logs alerts. It stands in for the modem driver.
type LogDispatcher struct {
	Logger *zap.Logger
}

func (d LogDispatcher) Dispatch(_ context.Context, alert Alert) error {
	d.Logger.Warn("sos alert dispatched",
		zap.String("contact", alert.Contact),
		zap.String("message", alert.Message),
	)
	return nil
}

// Options tunes the poller
type Options struct {
	BaseURL        string
	PollInterval   time.Duration
	ContactRefresh time.Duration
	RequestTimeout time.Duration
}

// Poller is the vehicle side of the SOS hand-off: it drains the backend
// mailbox and keeps a cached emergency contact for when the backend
// omits one
type Poller struct {
	client     *resty.Client
	dispatcher Dispatcher
	logger     *zap.Logger
	opts       Options

	mu      sync.RWMutex
	contact string
}

// NewPoller creates a poller against the backend at opts.BaseURL
func NewPoller(opts Options, dispatcher Dispatcher, logger *zap.Logger) *Poller {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		logger:     logger,
		opts:       opts,
	}
}

// Contact returns the cached emergency contact
func (p *Poller) Contact() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.contact
}

func (p *Poller) setContact(contact string) {
	if contact == "" {
		return
	}
	p.mu.Lock()
	p.contact = contact
	p.mu.Unlock()
}

// RefreshContact reloads the emergency contact from the backend profile.
// An empty profile keeps the cached contact.
func (p *Poller) RefreshContact(ctx context.Context) error {
	var profile domain.EmergencyProfile
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&profile).
		Get("/api/profile")
	if err != nil {
		return fmt.Errorf("agent: failed to fetch profile: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("agent: profile request returned %s", resp.Status())
	}

	p.setContact(profile.EmergencyContact)
	return nil
}

// ReportGSM tells the backend whether the modem is usable
func (p *Poller) ReportGSM(ctx context.Context, connected bool) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(map[string]bool{"connected": connected}).
		Post("/api/gsm-status")
	if err != nil {
		return fmt.Errorf("agent: failed to report gsm status: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("agent: gsm status returned %s", resp.Status())
	}
	return nil
}

// CheckOnce polls the mailbox and dispatches a pending alert. It reports
// whether the backend handed out a command.
func (p *Poller) CheckOnce(ctx context.Context) (bool, error) {
	var cmd domain.SOSPollResult
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&cmd).
		Get("/api/sos/check")
	if err != nil {
		return false, fmt.Errorf("agent: failed to poll sos: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("agent: sos poll returned %s", resp.Status())
	}
	if !cmd.Trigger {
		return false, nil
	}

	if cmd.TargetContact != nil {
		p.setContact(*cmd.TargetContact)
	}
	message := cmd.Message
	if message == "" {
		message = defaultRemoteMessage
	}

	p.logger.Warn("remote sos command received")

	contact := p.Contact()
	if contact == "" {
		p.logger.Error("sos triggered but no emergency contact is saved")
		return true, ErrNoContact
	}

	if err := p.dispatcher.Dispatch(ctx, Alert{Contact: contact, Message: message}); err != nil {
		return true, fmt.Errorf("agent: dispatch failed: %w", err)
	}
	return true, nil
}

// Run polls until ctx is cancelled. Failed polls are logged and retried
// on the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.RefreshContact(ctx); err != nil {
		p.logger.Warn("initial contact refresh failed", zap.Error(err))
	}
	if err := p.ReportGSM(ctx, true); err != nil {
		p.logger.Warn("gsm status report failed", zap.Error(err))
	}

	poll := time.NewTicker(p.opts.PollInterval)
	defer poll.Stop()
	refresh := time.NewTicker(p.opts.ContactRefresh)
	defer refresh.Stop()

	p.logger.Info("sos agent started",
		zap.String("backend", p.opts.BaseURL),
		zap.Duration("poll_interval", p.opts.PollInterval),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("sos agent stopping")
			return nil
		case <-poll.C:
			if _, err := p.CheckOnce(ctx); err != nil {
				p.logger.Error("sos poll failed", zap.Error(err))
			}
		case <-refresh.C:
			if err := p.RefreshContact(ctx); err != nil {
				p.logger.Warn("contact refresh failed", zap.Error(err))
			}
		}
	}
}
