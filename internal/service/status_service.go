package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

// hazardTypes are the incident types that light the dashboard hazard flag
var hazardTypes = []domain.IncidentType{domain.IncidentPothole, domain.IncidentAccident}

// GSMStatus is the modem snapshot plus the SOS tally
type GSMStatus struct {
	Connected  bool      `json:"connected"`
	Status     string    `json:"status"`
	AlertsSent int64     `json:"alertsSent"`
	Timestamp  time.Time `json:"timestamp"`
	LastReport time.Time `json:"last_report"`
}

// StatusService aggregates live snapshots and event log facts for the
// dashboard
type StatusService struct {
	telemetry    *TelemetryService
	log          *EventLog
	mailbox      *CommandMailbox
	hazardWindow time.Duration
	logger       *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(
	telemetry *TelemetryService,
	log *EventLog,
	mailbox *CommandMailbox,
	hazardWindow time.Duration,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		telemetry:    telemetry,
		log:          log,
		mailbox:      mailbox,
		hazardWindow: hazardWindow,
		logger:       logger,
	}
}

// GSMStatus returns the modem state and the number of SOS incidents logged
func (s *StatusService) GSMStatus(ctx context.Context) (GSMStatus, error) {
	count, err := s.log.CountIncidents(ctx, domain.IncidentSOS)
	if err != nil {
		return GSMStatus{}, err
	}

	gsm := s.telemetry.GSM()
	return GSMStatus{
		Connected:  gsm.Connected,
		Status:     "Service Ready",
		AlertsSent: count,
		Timestamp:  s.telemetry.Now(),
		LastReport: gsm.Timestamp,
	}, nil
}

// Summary builds the dashboard roll-up. The two event log queries run
// concurrently; the first error wins.
func (s *StatusService) Summary(ctx context.Context) (domain.StatusSummary, error) {
	now := s.telemetry.Now()

	var (
		hazard   bool
		sosCount int64
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fresh, err := s.log.FreshSince(ctx, hazardTypes, s.hazardWindow, now)
		if err != nil {
			setErr(err)
			return
		}
		hazard = fresh
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		n, err := s.log.CountIncidents(ctx, domain.IncidentSOS)
		if err != nil {
			setErr(err)
			return
		}
		sosCount = n
	}()

	wg.Wait()

	if firstErr != nil {
		s.logger.Error("status summary query failed", zap.Error(firstErr))
		return domain.StatusSummary{}, firstErr
	}

	alcohol := s.telemetry.Alcohol()
	_, pending := s.mailbox.Pending(now)

	return domain.StatusSummary{
		AlcoholLevel: alcohol.Level,
		Alcohol:      alcohol.Value,
		IsDrowsy:     s.telemetry.store.Drowsiness(now).IsDrowsy,
		Hazard:       hazard,
		SOSCount:     sosCount,
		SOSPending:   pending,
		Timestamp:    now,
	}, nil
}
