package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/repository/postgres"
)

var testEpoch = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// brokenRepo fails every call except the ones it inherits
type brokenRepo struct {
	*postgres.MemoryRepository
	err error
}

func (r *brokenRepo) InsertIncident(context.Context, domain.IncidentRecord) (int64, error) {
	return 0, r.err
}

func (r *brokenRepo) InsertSensorLog(context.Context, domain.SensorLogRecord) (int64, error) {
	return 0, r.err
}

func (r *brokenRepo) InsertDrowsinessLog(context.Context, domain.DrowsinessLogRecord) (int64, error) {
	return 0, r.err
}

func (r *brokenRepo) RecentDrowsinessLogs(context.Context, int) ([]domain.DrowsinessLogRecord, error) {
	return nil, r.err
}

func (r *brokenRepo) CountIncidents(context.Context, domain.IncidentType) (int64, error) {
	return 0, r.err
}

func (r *brokenRepo) HasIncidentSince(context.Context, []domain.IncidentType, time.Time) (bool, error) {
	return false, r.err
}

func (r *brokenRepo) EmergencyProfile(context.Context) (domain.EmergencyProfile, error) {
	return domain.EmergencyProfile{}, r.err
}

type pipeline struct {
	clock     *fakeClock
	repo      EventRepository
	store     *TelemetryStore
	log       *EventLog
	mailbox   *CommandMailbox
	profile   *ProfileService
	telemetry *TelemetryService
	status    *StatusService
}

func newPipeline(repo EventRepository) *pipeline {
	clock := newFakeClock()
	logger := zap.NewNop()

	store := NewTelemetryStore(clock.Now(), 5*time.Second)
	log := NewEventLog(repo, nil, logger, nil)
	profile := NewProfileService(repo)
	mailbox := NewCommandMailbox(30*time.Second, profile, logger, nil)
	telemetry := NewTelemetryService(store, NewClassifier(DefaultThresholds()), log, mailbox, TelemetryOptions{
		CriticalDebounce: 5 * time.Second,
		LogThrottle:      time.Second,
		Clock:            clock.Now,
	}, logger, nil)

	return &pipeline{
		clock:     clock,
		repo:      repo,
		store:     store,
		log:       log,
		mailbox:   mailbox,
		profile:   profile,
		telemetry: telemetry,
		status:    NewStatusService(telemetry, log, mailbox, 30*time.Second, logger),
	}
}

func countIncidents(recs []domain.IncidentRecord, t domain.IncidentType) int {
	n := 0
	for _, r := range recs {
		if r.Type == t {
			n++
		}
	}
	return n
}

func countSensorLogs(recs []domain.SensorLogRecord, t domain.SensorType) int {
	n := 0
	for _, r := range recs {
		if r.SensorType == t {
			n++
		}
	}
	return n
}
