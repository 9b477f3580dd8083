package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

// memoryRetention is how many rows each in-memory table keeps. Tables are
// trimmed in batches once they grow a quarter past it.
const memoryRetention = 10000

// MemoryRepository implements domain.EventRepository in process memory.
// It backs the server when no database is reachable, and tests.
type MemoryRepository struct {
	mu sync.RWMutex

	incidents  []domain.IncidentRecord
	sensorLogs []domain.SensorLogRecord
	drowsiness []domain.DrowsinessLogRecord
	profile    *domain.EmergencyProfile

	nextIncidentID   int64
	nextSensorLogID  int64
	nextDrowsinessID int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// InsertIncident appends an incident and assigns the next id
func (r *MemoryRepository) InsertIncident(ctx context.Context, rec domain.IncidentRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextIncidentID++
	rec.ID = r.nextIncidentID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.incidents = appendCapped(r.incidents, rec)
	return rec.ID, nil
}

// RecentIncidents returns the newest incidents first
func (r *MemoryRepository) RecentIncidents(ctx context.Context, limit int) ([]domain.IncidentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.incidents, limit), nil
}

// CountIncidents counts incidents of type t
func (r *MemoryRepository) CountIncidents(ctx context.Context, t domain.IncidentType) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.incidents {
		if rec.Type == t {
			n++
		}
	}
	return n, nil
}

// HasIncidentSince scans incidents of the given types created at or after
// since. Rows are kept in insertion order, so the scan stops at the first
// row older than since.
func (r *MemoryRepository) HasIncidentSince(ctx context.Context, types []domain.IncidentType, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.incidents) - 1; i >= 0; i-- {
		rec := r.incidents[i]
		if rec.CreatedAt.Before(since) {
			break
		}
		for _, t := range types {
			if rec.Type == t {
				return true, nil
			}
		}
	}
	return false, nil
}

// InsertSensorLog appends a raw sample
func (r *MemoryRepository) InsertSensorLog(ctx context.Context, rec domain.SensorLogRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSensorLogID++
	rec.ID = r.nextSensorLogID
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	r.sensorLogs = appendCapped(r.sensorLogs, rec)
	return rec.ID, nil
}

// RecentSensorLogs returns the newest samples first
func (r *MemoryRepository) RecentSensorLogs(ctx context.Context, limit int) ([]domain.SensorLogRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.sensorLogs, limit), nil
}

// InsertDrowsinessLog appends a drowsiness report
func (r *MemoryRepository) InsertDrowsinessLog(ctx context.Context, rec domain.DrowsinessLogRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextDrowsinessID++
	rec.ID = r.nextDrowsinessID
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	r.drowsiness = appendCapped(r.drowsiness, rec)
	return rec.ID, nil
}

// RecentDrowsinessLogs returns the newest reports first
func (r *MemoryRepository) RecentDrowsinessLogs(ctx context.Context, limit int) ([]domain.DrowsinessLogRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newestFirst(r.drowsiness, limit), nil
}

// EmergencyProfile returns the saved profile
func (r *MemoryRepository) EmergencyProfile(ctx context.Context) (domain.EmergencyProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return domain.EmergencyProfile{}, domain.ErrProfileNotFound
	}
	return *r.profile, nil
}

// SaveEmergencyProfile replaces the saved profile
func (r *MemoryRepository) SaveEmergencyProfile(ctx context.Context, p domain.EmergencyProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = &p
	return nil
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}

func appendCapped[T any](rows []T, row T) []T {
	rows = append(rows, row)
	if len(rows) > memoryRetention+memoryRetention/4 {
		rows = append(rows[:0:0], rows[len(rows)-memoryRetention:]...)
	}
	return rows
}

func newestFirst[T any](rows []T, limit int) []T {
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	out := make([]T, 0, limit)
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out
}
