package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/metrics"
)

const (
	opIncident   = "incident"
	opSensorLog  = "sensor_log"
	opDrowsiness = "drowsiness_log"
)

// IncidentPublisher fans a freshly stored incident out to live consumers
type IncidentPublisher interface {
	PublishIncident(ctx context.Context, rec domain.IncidentRecord) error
}

// WriteResult is the outcome of a log append. Callers log it; it never
// reaches the HTTP layer, so a lost row cannot fail a sensor report.
type WriteResult struct {
	Op  string
	ID  int64
	Err error
}

func (r WriteResult) OK() bool {
	return r.Err == nil
}

// EventLog wraps the repository with availability-first write semantics
type EventLog struct {
	repo      EventRepository
	publisher IncidentPublisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewEventLog creates an event log; publisher may be nil
func NewEventLog(repo EventRepository, publisher IncidentPublisher, logger *zap.Logger, m *metrics.Metrics) *EventLog {
	return &EventLog{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// AppendIncident stores rec and publishes it. Failures are logged and
// counted, never returned as errors.
func (l *EventLog) AppendIncident(ctx context.Context, rec domain.IncidentRecord) WriteResult {
	id, err := l.repo.InsertIncident(ctx, rec)
	res := WriteResult{Op: opIncident, ID: id, Err: err}
	if err != nil {
		l.failed(res, zap.String("type", string(rec.Type)))
		return res
	}

	l.metrics.IncidentRecorded(string(rec.Type))
	l.logger.Info("incident recorded",
		zap.Int64("id", id),
		zap.String("type", string(rec.Type)),
		zap.Float64("latitude", rec.Latitude),
		zap.Float64("longitude", rec.Longitude),
	)

	if l.publisher != nil {
		rec.ID = id
		if perr := l.publisher.PublishIncident(ctx, rec); perr != nil {
			l.logger.Warn("incident publish failed", zap.Int64("id", id), zap.Error(perr))
		}
	}
	return res
}

// AppendSensorLog stores a raw sample
func (l *EventLog) AppendSensorLog(ctx context.Context, rec domain.SensorLogRecord) WriteResult {
	id, err := l.repo.InsertSensorLog(ctx, rec)
	res := WriteResult{Op: opSensorLog, ID: id, Err: err}
	if err != nil {
		l.failed(res, zap.String("sensor_type", string(rec.SensorType)))
	}
	return res
}

// AppendDrowsiness stores a drowsiness report
func (l *EventLog) AppendDrowsiness(ctx context.Context, rec domain.DrowsinessLogRecord) WriteResult {
	id, err := l.repo.InsertDrowsinessLog(ctx, rec)
	res := WriteResult{Op: opDrowsiness, ID: id, Err: err}
	if err != nil {
		l.failed(res)
	}
	return res
}

func (l *EventLog) RecentIncidents(ctx context.Context, limit int) ([]domain.IncidentRecord, error) {
	return l.repo.RecentIncidents(ctx, limit)
}

func (l *EventLog) RecentSensorLogs(ctx context.Context, limit int) ([]domain.SensorLogRecord, error) {
	return l.repo.RecentSensorLogs(ctx, limit)
}

func (l *EventLog) RecentDrowsiness(ctx context.Context, limit int) ([]domain.DrowsinessLogRecord, error) {
	return l.repo.RecentDrowsinessLogs(ctx, limit)
}

func (l *EventLog) CountIncidents(ctx context.Context, t domain.IncidentType) (int64, error) {
	return l.repo.CountIncidents(ctx, t)
}

// FreshSince reports whether an incident of one of types was logged
// within window before now
func (l *EventLog) FreshSince(ctx context.Context, types []domain.IncidentType, window time.Duration, now time.Time) (bool, error) {
	return l.repo.HasIncidentSince(ctx, types, now.Add(-window))
}

func (l *EventLog) failed(res WriteResult, fields ...zap.Field) {
	l.metrics.WriteFailed(res.Op)
	fields = append(fields, zap.String("op", res.Op), zap.Error(res.Err))
	l.logger.Error("event log write dropped", fields...)
}
