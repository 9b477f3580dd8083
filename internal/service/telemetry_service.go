package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/metrics"
)

const (
	gateKeyVibration = "vibration"

	// DrowsinessHistoryLimit is how many drowsiness rows the status read returns
	DrowsinessHistoryLimit = 10
)

// TelemetryOptions tunes the ingestion pipeline
type TelemetryOptions struct {
	CriticalDebounce time.Duration
	LogThrottle      time.Duration
	// Clock defaults to time.Now
	Clock func() time.Time
}

// TelemetryService runs each sensor report through
// snapshot update -> rate gate -> classifier -> event log
type TelemetryService struct {
	store      *TelemetryStore
	classifier Classifier
	debounce   *RateGate
	throttle   *RateGate
	log        *EventLog
	mailbox    *CommandMailbox
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewTelemetryService creates a new ingestion service
func NewTelemetryService(
	store *TelemetryStore,
	classifier Classifier,
	log *EventLog,
	mailbox *CommandMailbox,
	opts TelemetryOptions,
	logger *zap.Logger,
	m *metrics.Metrics,
) *TelemetryService {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &TelemetryService{
		store:      store,
		classifier: classifier,
		debounce:   NewRateGate(opts.CriticalDebounce),
		throttle:   NewRateGate(opts.LogThrottle),
		log:        log,
		mailbox:    mailbox,
		logger:     logger,
		metrics:    m,
		now:        now,
	}
}

// Now returns the service clock
func (s *TelemetryService) Now() time.Time {
	return s.now()
}

// RecordRoadEvent inserts an externally classified incident as is
func (s *TelemetryService) RecordRoadEvent(ctx context.Context, rec domain.IncidentRecord) WriteResult {
	s.metrics.ReportReceived("road_event")
	if rec.Type == "" {
		rec.Type = domain.IncidentUnknown
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	return s.log.AppendIncident(ctx, rec)
}

// IngestDrowsiness stores the driver state, logs the report and raises an
// ungated incident for every drowsy report
func (s *TelemetryService) IngestDrowsiness(ctx context.Context, isDrowsy bool, events int) domain.Drowsiness {
	now := s.now()
	s.metrics.ReportReceived(string(domain.SensorDrowsiness))

	d := domain.Drowsiness{IsDrowsy: isDrowsy, Events: events, Timestamp: now}
	s.store.UpdateDrowsiness(d)

	s.log.AppendDrowsiness(ctx, domain.DrowsinessLogRecord{
		IsDrowsy:    isDrowsy,
		EventsCount: events,
		Timestamp:   now,
	})

	if rec := s.classifier.ClassifyDrowsiness(isDrowsy, s.store.Location(), now); rec != nil {
		s.log.AppendIncident(ctx, *rec)
	}
	return d
}

// IngestRadar stores the sweep sample and logs it
func (s *TelemetryService) IngestRadar(ctx context.Context, angle, distance int) domain.Radar {
	now := s.now()
	s.metrics.ReportReceived(string(domain.SensorRadar))

	r := domain.Radar{Angle: angle, Distance: distance, Timestamp: now}
	s.store.UpdateRadar(r)

	s.log.AppendSensorLog(ctx, domain.SensorLogRecord{
		SensorType: domain.SensorTypeRadar,
		Value1:     float64(angle),
		Value2:     domain.Float(float64(distance)),
		Timestamp:  now,
	})
	return r
}

// IngestVibration normalizes the report, updates the live snapshot, logs a
// critical incident behind the debounce gate and a raw sample behind the
// throttle gate. The two gates are independent.
func (s *TelemetryService) IngestVibration(ctx context.Context, r domain.VibrationReading) domain.Vibration {
	now := s.now()
	s.metrics.ReportReceived(string(domain.SensorVibration))

	left, right := s.classifier.NormalizeVibration(r)
	v := domain.Vibration{Left: left, Right: right, Timestamp: now}
	v.Band = s.classifier.VibrationBand(v.Peak())
	s.store.UpdateVibration(v)

	if rec := s.classifier.ClassifyVibration(v, s.store.Location(), now); rec != nil {
		if s.debounce.Allow(gateKeyVibration, now) {
			s.log.AppendIncident(ctx, *rec)
		} else {
			s.metrics.GateSuppressed("debounce")
		}
	}

	if s.throttle.Allow(gateKeyVibration, now) {
		s.log.AppendSensorLog(ctx, domain.SensorLogRecord{
			SensorType: domain.SensorTypeVibration,
			Value1:     left,
			Value2:     domain.Float(right),
			Timestamp:  now,
		})
	} else {
		s.metrics.GateSuppressed("throttle")
	}
	return v
}

// IngestGSM stores the modem link state
func (s *TelemetryService) IngestGSM(ctx context.Context, connected bool) domain.GSM {
	s.metrics.ReportReceived(string(domain.SensorGSM))

	g := domain.GSM{Connected: connected, Timestamp: s.now()}
	s.store.UpdateGSM(g)

	s.logger.Info("gsm status update", zap.Bool("connected", connected))
	return g
}

// IngestAlcohol bands the reading, raises an incident on every High report
// and logs the raw sample
func (s *TelemetryService) IngestAlcohol(ctx context.Context, value float64) domain.Alcohol {
	now := s.now()
	s.metrics.ReportReceived(string(domain.SensorAlcohol))

	if rec := s.classifier.ClassifyAlcohol(value, s.store.Location(), now); rec != nil {
		s.log.AppendIncident(ctx, *rec)
	}

	a := domain.Alcohol{Value: value, Level: s.classifier.AlcoholLevel(value), Timestamp: now}
	s.store.UpdateAlcohol(a)

	s.log.AppendSensorLog(ctx, domain.SensorLogRecord{
		SensorType: domain.SensorTypeAlcohol,
		Value1:     value,
		Timestamp:  now,
	})
	return a
}

// IngestLocation merges a GPS report. Reports without a fix are dropped
// so a fallback source's good fix survives; applied reports are logged.
func (s *TelemetryService) IngestLocation(ctx context.Context, lat, lon, speed float64) bool {
	now := s.now()
	s.metrics.ReportReceived(string(domain.SensorLocation))

	loc := domain.Location{Latitude: lat, Longitude: lon, Speed: speed, Timestamp: now}
	if !s.store.UpdateLocation(loc) {
		return false
	}

	s.log.AppendSensorLog(ctx, domain.SensorLogRecord{
		SensorType: domain.SensorTypeGPS,
		Value1:     lat,
		Value2:     domain.Float(lon),
		Value3:     domain.Float(speed),
		Timestamp:  now,
	})
	return true
}

// TriggerSOS records an SOS incident and queues the command for the
// actuator. Neither step is gated.
func (s *TelemetryService) TriggerSOS(ctx context.Context, kind domain.SOSKind, message string) domain.SOSCommand {
	now := s.now()
	loc := s.store.Location()

	s.log.AppendIncident(ctx, s.classifier.SOSIncident(loc, now))

	return s.mailbox.Queue(ctx, ComposeSOSMessage(kind, message, loc), now)
}

// PollSOS drains the mailbox for the actuator
func (s *TelemetryService) PollSOS(ctx context.Context) domain.SOSPollResult {
	return s.mailbox.Poll(ctx, s.now())
}

// DrowsinessStatus returns the current driver state and recent history.
// The current state is always returned, even when the history read fails.
func (s *TelemetryService) DrowsinessStatus(ctx context.Context) (domain.Drowsiness, []domain.DrowsinessLogRecord, error) {
	current := s.store.Drowsiness(s.now())
	history, err := s.log.RecentDrowsiness(ctx, DrowsinessHistoryLimit)
	return current, history, err
}

// Location returns the last accepted fix
func (s *TelemetryService) Location() domain.Location {
	return s.store.Location()
}

// Vibration returns the live vibration values
func (s *TelemetryService) Vibration() domain.Vibration {
	return s.store.Vibration()
}

// Alcohol returns the live alcohol reading
func (s *TelemetryService) Alcohol() domain.Alcohol {
	return s.store.Alcohol()
}

// Radar returns the live radar sweep
func (s *TelemetryService) Radar() domain.Radar {
	return s.store.Radar()
}

// GSM returns the live modem state
func (s *TelemetryService) GSM() domain.GSM {
	return s.store.GSM()
}

// RecentIncidents returns up to limit incidents, newest first
func (s *TelemetryService) RecentIncidents(ctx context.Context, limit int) ([]domain.IncidentRecord, error) {
	return s.log.RecentIncidents(ctx, limit)
}

// RecentSensorLogs returns up to limit raw samples, newest first
func (s *TelemetryService) RecentSensorLogs(ctx context.Context, limit int) ([]domain.SensorLogRecord, error) {
	return s.log.RecentSensorLogs(ctx, limit)
}

// LastSeen returns when each sensor class last reported
func (s *TelemetryService) LastSeen() map[domain.SensorClass]time.Time {
	return s.store.LastSeen()
}
