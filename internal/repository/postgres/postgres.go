package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const incidentColumns = `id, type, confidence, vibration, latitude, longitude, distance,
			   temperature, humidity, alcohol, network_strength, sos_alert, gsm_connected, created_at`

// Open connects to PostgreSQL through the pgx database/sql driver and
// verifies the connection
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresRepository implements domain.EventRepository
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the event log tables if they do not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// InsertIncident appends a road event
func (r *PostgresRepository) InsertIncident(ctx context.Context, rec domain.IncidentRecord) (int64, error) {
	query := `
		INSERT INTO road_events (
			type, confidence, vibration, latitude, longitude, distance,
			temperature, humidity, alcohol, network_strength, sos_alert, gsm_connected, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		string(rec.Type), rec.Confidence, rec.Vibration, rec.Latitude, rec.Longitude, rec.Distance,
		rec.Temperature, rec.Humidity, rec.Alcohol, rec.NetworkStrength, rec.SOSAlert, rec.GSMConnected, rec.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to insert road event: %w", err)
	}

	return id, nil
}

// RecentIncidents retrieves the newest road events
func (r *PostgresRepository) RecentIncidents(ctx context.Context, limit int) ([]domain.IncidentRecord, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM road_events
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query road events: %w", err)
	}
	defer rows.Close()

	results := make([]domain.IncidentRecord, 0, limit)
	for rows.Next() {
		var (
			rec domain.IncidentRecord
			t   string
		)
		err := rows.Scan(
			&rec.ID, &t, &rec.Confidence, &rec.Vibration, &rec.Latitude, &rec.Longitude, &rec.Distance,
			&rec.Temperature, &rec.Humidity, &rec.Alcohol, &rec.NetworkStrength, &rec.SOSAlert, &rec.GSMConnected, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan road event row: %w", err)
		}
		rec.Type = domain.IncidentType(t)
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate road events: %w", err)
	}

	return results, nil
}

// CountIncidents counts road events of one type
func (r *PostgresRepository) CountIncidents(ctx context.Context, t domain.IncidentType) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM road_events WHERE type = $1`, string(t)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to count road events: %w", err)
	}
	return n, nil
}

// HasIncidentSince checks for a road event of the given types at or after since
func (r *PostgresRepository) HasIncidentSince(ctx context.Context, types []domain.IncidentType, since time.Time) (bool, error) {
	if len(types) == 0 {
		return false, nil
	}

	args := make([]any, 0, len(types)+1)
	args = append(args, since)
	placeholders := make([]string, len(types))
	for i, t := range types {
		args = append(args, string(t))
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	query := `SELECT EXISTS (SELECT 1 FROM road_events WHERE created_at >= $1 AND type IN (` +
		strings.Join(placeholders, ", ") + `))`

	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("postgres: failed to check recent road events: %w", err)
	}
	return found, nil
}

// InsertSensorLog appends a raw sensor sample
func (r *PostgresRepository) InsertSensorLog(ctx context.Context, rec domain.SensorLogRecord) (int64, error) {
	query := `
		INSERT INTO sensor_logs (sensor_type, value_1, value_2, value_3, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		string(rec.SensorType), rec.Value1, rec.Value2, rec.Value3, rec.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to insert sensor log: %w", err)
	}
	return id, nil
}

// RecentSensorLogs retrieves the newest raw samples
func (r *PostgresRepository) RecentSensorLogs(ctx context.Context, limit int) ([]domain.SensorLogRecord, error) {
	query := `
		SELECT id, sensor_type, value_1, value_2, value_3, timestamp
		FROM sensor_logs
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query sensor logs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.SensorLogRecord, 0, limit)
	for rows.Next() {
		var (
			rec        domain.SensorLogRecord
			sensorType string
			v2, v3     sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &sensorType, &rec.Value1, &v2, &v3, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan sensor log row: %w", err)
		}
		rec.SensorType = domain.SensorType(sensorType)
		if v2.Valid {
			rec.Value2 = domain.Float(v2.Float64)
		}
		if v3.Valid {
			rec.Value3 = domain.Float(v3.Float64)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate sensor logs: %w", err)
	}

	return results, nil
}

// InsertDrowsinessLog appends a drowsiness report
func (r *PostgresRepository) InsertDrowsinessLog(ctx context.Context, rec domain.DrowsinessLogRecord) (int64, error) {
	query := `
		INSERT INTO drowsiness_logs (is_drowsy, events_count, timestamp)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, rec.IsDrowsy, rec.EventsCount, rec.Timestamp).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: failed to insert drowsiness log: %w", err)
	}
	return id, nil
}

// RecentDrowsinessLogs retrieves the newest drowsiness reports
func (r *PostgresRepository) RecentDrowsinessLogs(ctx context.Context, limit int) ([]domain.DrowsinessLogRecord, error) {
	query := `
		SELECT id, is_drowsy, events_count, timestamp
		FROM drowsiness_logs
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query drowsiness logs: %w", err)
	}
	defer rows.Close()

	results := make([]domain.DrowsinessLogRecord, 0, limit)
	for rows.Next() {
		var rec domain.DrowsinessLogRecord
		if err := rows.Scan(&rec.ID, &rec.IsDrowsy, &rec.EventsCount, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan drowsiness log row: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate drowsiness logs: %w", err)
	}

	return results, nil
}

// EmergencyProfile reads the single profile row
func (r *PostgresRepository) EmergencyProfile(ctx context.Context) (domain.EmergencyProfile, error) {
	query := `SELECT name, emergency_contact, blood_group FROM user_profile WHERE id = 1`

	var p domain.EmergencyProfile
	err := r.db.QueryRowContext(ctx, query).Scan(&p.Name, &p.EmergencyContact, &p.BloodGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EmergencyProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.EmergencyProfile{}, fmt.Errorf("postgres: failed to read emergency profile: %w", err)
	}
	return p, nil
}

// SaveEmergencyProfile upserts the single profile row
func (r *PostgresRepository) SaveEmergencyProfile(ctx context.Context, p domain.EmergencyProfile) error {
	query := `
		INSERT INTO user_profile (id, name, emergency_contact, blood_group)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			emergency_contact = EXCLUDED.emergency_contact,
			blood_group = EXCLUDED.blood_group
	`

	if _, err := r.db.ExecContext(ctx, query, p.Name, p.EmergencyContact, p.BloodGroup); err != nil {
		return fmt.Errorf("postgres: failed to save emergency profile: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
