package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no emergency profile has been saved yet
var ErrProfileNotFound = errors.New("emergency profile not found")

// StatusSummary is the dashboard roll-up served on /api/status
type StatusSummary struct {
	AlcoholLevel AlcoholLevel `json:"alcohol_level"`
	Alcohol      float64      `json:"alcohol"`
	IsDrowsy     bool         `json:"is_drowsy"`
	Hazard       bool         `json:"hazard"`
	SOSCount     int64        `json:"sos_count"`
	SOSPending   bool         `json:"sos_pending"`
	Timestamp    time.Time    `json:"timestamp"`
}

// EventRepository defines the persistence interface for the event log.
// The domain owns the interface; storage packages implement it.
type EventRepository interface {
	// InsertIncident appends a road event and returns its id
	InsertIncident(ctx context.Context, rec IncidentRecord) (int64, error)

	// RecentIncidents returns up to limit road events, newest first
	RecentIncidents(ctx context.Context, limit int) ([]IncidentRecord, error)

	// CountIncidents counts road events of the given type
	CountIncidents(ctx context.Context, t IncidentType) (int64, error)

	// HasIncidentSince reports whether any road event of the given types
	// was created at or after since
	HasIncidentSince(ctx context.Context, types []IncidentType, since time.Time) (bool, error)

	// InsertSensorLog appends a raw sensor sample
	InsertSensorLog(ctx context.Context, rec SensorLogRecord) (int64, error)

	// RecentSensorLogs returns up to limit raw samples, newest first
	RecentSensorLogs(ctx context.Context, limit int) ([]SensorLogRecord, error)

	// InsertDrowsinessLog appends a drowsiness report
	InsertDrowsinessLog(ctx context.Context, rec DrowsinessLogRecord) (int64, error)

	// RecentDrowsinessLogs returns up to limit drowsiness reports, newest first
	RecentDrowsinessLogs(ctx context.Context, limit int) ([]DrowsinessLogRecord, error)

	// EmergencyProfile returns the saved profile or ErrProfileNotFound
	EmergencyProfile(ctx context.Context) (EmergencyProfile, error)

	// SaveEmergencyProfile replaces the saved profile
	SaveEmergencyProfile(ctx context.Context, p EmergencyProfile) error

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
