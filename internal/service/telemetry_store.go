package service

import (
	"sync"
	"time"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

// cell is a mutex-guarded single value
type cell[T any] struct {
	mu sync.RWMutex
	v  T
}

func (c *cell[T]) load() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

func (c *cell[T]) store(v T) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// TelemetryStore keeps the latest snapshot of each sensor class.
// Each class has its own lock; writes replace the whole snapshot.
type TelemetryStore struct {
	location   cell[domain.Location]
	vibration  cell[domain.Vibration]
	alcohol    cell[domain.Alcohol]
	drowsiness cell[domain.Drowsiness]
	radar      cell[domain.Radar]
	gsm        cell[domain.GSM]

	drowsinessStaleAfter time.Duration
}

// NewTelemetryStore creates a store whose snapshots all start at their
// zero reading stamped with startedAt
func NewTelemetryStore(startedAt time.Time, drowsinessStaleAfter time.Duration) *TelemetryStore {
	s := &TelemetryStore{drowsinessStaleAfter: drowsinessStaleAfter}
	s.location.v = domain.Location{Timestamp: startedAt}
	s.vibration.v = domain.Vibration{Band: domain.VibrationNormal, Timestamp: startedAt}
	s.alcohol.v = domain.Alcohol{Level: domain.AlcoholNormal, Timestamp: startedAt}
	s.drowsiness.v = domain.Drowsiness{Timestamp: startedAt}
	s.radar.v = domain.Radar{Timestamp: startedAt}
	s.gsm.v = domain.GSM{Timestamp: startedAt}
	return s
}

// UpdateLocation applies loc only when it carries a fix. A (0, 0) report
// leaves the previous fix in place and returns false.
func (s *TelemetryStore) UpdateLocation(loc domain.Location) bool {
	if !loc.HasFix() {
		return false
	}
	s.location.store(loc)
	return true
}

// Location returns the last accepted fix
func (s *TelemetryStore) Location() domain.Location {
	return s.location.load()
}

// UpdateVibration replaces the vibration snapshot
func (s *TelemetryStore) UpdateVibration(v domain.Vibration) {
	s.vibration.store(v)
}

// Vibration returns the latest vibration snapshot
func (s *TelemetryStore) Vibration() domain.Vibration {
	return s.vibration.load()
}

// UpdateAlcohol replaces the alcohol snapshot
func (s *TelemetryStore) UpdateAlcohol(a domain.Alcohol) {
	s.alcohol.store(a)
}

// Alcohol returns the latest alcohol snapshot
func (s *TelemetryStore) Alcohol() domain.Alcohol {
	return s.alcohol.load()
}

// UpdateDrowsiness replaces the drowsiness snapshot
func (s *TelemetryStore) UpdateDrowsiness(d domain.Drowsiness) {
	s.drowsiness.store(d)
}

// Drowsiness returns the latest driver state. A snapshot older than the
// staleness window is reset to not-drowsy, so a crashed camera process
// cannot leave the alert latched.
func (s *TelemetryStore) Drowsiness(now time.Time) domain.Drowsiness {
	s.drowsiness.mu.Lock()
	defer s.drowsiness.mu.Unlock()

	if s.drowsiness.v.IsDrowsy && now.Sub(s.drowsiness.v.Timestamp) > s.drowsinessStaleAfter {
		s.drowsiness.v.IsDrowsy = false
	}
	return s.drowsiness.v
}

// UpdateRadar replaces the radar snapshot
func (s *TelemetryStore) UpdateRadar(r domain.Radar) {
	s.radar.store(r)
}

// Radar returns the latest radar sweep
func (s *TelemetryStore) Radar() domain.Radar {
	return s.radar.load()
}

// UpdateGSM replaces the modem snapshot
func (s *TelemetryStore) UpdateGSM(g domain.GSM) {
	s.gsm.store(g)
}

// GSM returns the latest modem snapshot
func (s *TelemetryStore) GSM() domain.GSM {
	return s.gsm.load()
}

// LastSeen returns the snapshot timestamp of every sensor class
func (s *TelemetryStore) LastSeen() map[domain.SensorClass]time.Time {
	return map[domain.SensorClass]time.Time{
		domain.SensorLocation:   s.location.load().Timestamp,
		domain.SensorVibration:  s.vibration.load().Timestamp,
		domain.SensorAlcohol:    s.alcohol.load().Timestamp,
		domain.SensorDrowsiness: s.drowsiness.load().Timestamp,
		domain.SensorRadar:      s.radar.load().Timestamp,
		domain.SensorGSM:        s.gsm.load().Timestamp,
	}
}
