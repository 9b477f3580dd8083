package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/repository/postgres"
)

func TestTelemetryService_VibrationDebounceScenario(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()
	critical := domain.VibrationReading{Left: 0.9, Right: 0.1}

	p.telemetry.IngestVibration(ctx, critical)
	p.clock.Advance(200 * time.Millisecond)
	p.telemetry.IngestVibration(ctx, critical)
	p.clock.Advance(4900 * time.Millisecond)
	p.telemetry.IngestVibration(ctx, critical)

	incidents, err := p.repo.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	require.Equal(t, 2, countIncidents(incidents, domain.IncidentCriticalVibration))
	assert.Equal(t, testEpoch.Add(5100*time.Millisecond), incidents[0].CreatedAt)
	assert.Equal(t, testEpoch, incidents[1].CreatedAt)
	assert.Equal(t, 0.9, incidents[0].Vibration)

	logs, err := p.repo.RecentSensorLogs(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, countSensorLogs(logs, domain.SensorTypeVibration), "the 200ms sample is throttled")
}

func TestTelemetryService_VibrationBurstLogsOnce(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		p.telemetry.IngestVibration(ctx, domain.VibrationReading{Left: 1.0, Right: 1.0})
		p.clock.Advance(10 * time.Millisecond)
	}

	incidents, err := p.repo.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, countIncidents(incidents, domain.IncidentCriticalVibration))

	assert.Equal(t, domain.VibrationCritical, p.telemetry.Vibration().Band)
}

func TestTelemetryService_VibrationMajorIsLiveOnly(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	v := p.telemetry.IngestVibration(ctx, domain.VibrationReading{Left: 0.6, Right: 0.55})
	assert.Equal(t, domain.VibrationMajor, v.Band)
	assert.Equal(t, v, p.telemetry.Vibration())

	incidents, err := p.repo.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestTelemetryService_VibrationRawCalibration(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	v := p.telemetry.IngestVibration(ctx, domain.VibrationReading{
		Left:     0.1,
		Right:    0.1,
		RawLeft:  domain.Float(31500),
		RawRight: domain.Float(7000),
	})
	assert.InDelta(t, 0.9, v.Left, 1e-9)
	assert.InDelta(t, 0.2, v.Right, 1e-9)

	incidents, err := p.repo.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, countIncidents(incidents, domain.IncidentCriticalVibration))
}

func TestTelemetryService_IncidentUsesLatestLocation(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	p.telemetry.IngestLocation(ctx, 12.97, 77.59, 42)
	p.telemetry.IngestVibration(ctx, domain.VibrationReading{Left: 0.85})

	incidents, err := p.repo.RecentIncidents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, 12.97, incidents[0].Latitude)
	assert.Equal(t, 77.59, incidents[0].Longitude)
}

func TestTelemetryService_LocationWithoutFixIsNoOp(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	require.True(t, p.telemetry.IngestLocation(ctx, 12.97, 77.59, 42))
	before := p.telemetry.Location()

	p.clock.Advance(time.Second)
	assert.False(t, p.telemetry.IngestLocation(ctx, 0, 0, 15))
	assert.Equal(t, before, p.telemetry.Location())

	logs, err := p.repo.RecentSensorLogs(ctx, 50)
	require.NoError(t, err)
	require.Equal(t, 1, countSensorLogs(logs, domain.SensorTypeGPS))
	assert.Equal(t, 12.97, logs[0].Value1)
	assert.Equal(t, 77.59, *logs[0].Value2)
	assert.Equal(t, 42.0, *logs[0].Value3)
}

func TestTelemetryService_Alcohol(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	tests := []struct {
		value        float64
		wantLevel    domain.AlcoholLevel
		wantIncident bool
	}{
		{10, domain.AlcoholNormal, false},
		{50, domain.AlcoholModerate, false},
		{70, domain.AlcoholModerate, false},
		{75, domain.AlcoholHigh, true},
		{90, domain.AlcoholHigh, true},
	}

	wantIncidents := 0
	for _, tt := range tests {
		a := p.telemetry.IngestAlcohol(ctx, tt.value)
		assert.Equal(t, tt.wantLevel, a.Level, "value %v", tt.value)
		assert.Equal(t, a, p.telemetry.Alcohol())
		if tt.wantIncident {
			wantIncidents++
		}

		incidents, err := p.repo.RecentIncidents(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, wantIncidents, countIncidents(incidents, domain.IncidentAlcoholAlert), "value %v", tt.value)
	}

	logs, err := p.repo.RecentSensorLogs(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, len(tests), countSensorLogs(logs, domain.SensorTypeAlcohol), "every report is logged")

	incidents, _ := p.repo.RecentIncidents(ctx, 1)
	assert.Equal(t, 90.0, incidents[0].Alcohol)
}

func TestTelemetryService_DrowsinessAutoReset(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	p.telemetry.IngestDrowsiness(ctx, true, 3)

	p.clock.Advance(5 * time.Second)
	current, history, err := p.telemetry.DrowsinessStatus(ctx)
	require.NoError(t, err)
	assert.True(t, current.IsDrowsy)
	require.Len(t, history, 1)
	assert.True(t, history[0].IsDrowsy)
	assert.Equal(t, 3, history[0].EventsCount)

	p.clock.Advance(time.Second)
	current, _, err = p.telemetry.DrowsinessStatus(ctx)
	require.NoError(t, err)
	assert.False(t, current.IsDrowsy)
}

func TestTelemetryService_EveryDrowsyReportIsAnIncident(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	p.telemetry.IngestDrowsiness(ctx, true, 1)
	p.telemetry.IngestDrowsiness(ctx, true, 2)
	p.telemetry.IngestDrowsiness(ctx, false, 2)

	incidents, err := p.repo.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, countIncidents(incidents, domain.IncidentDrowsinessAlert))

	_, history, err := p.telemetry.DrowsinessStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestTelemetryService_DrowsinessHistoryErrorKeepsCurrent(t *testing.T) {
	repo := &brokenRepo{MemoryRepository: postgres.NewMemoryRepository(), err: errors.New("db down")}
	p := newPipeline(repo)
	ctx := context.Background()

	d := p.telemetry.IngestDrowsiness(ctx, true, 7)

	current, history, err := p.telemetry.DrowsinessStatus(ctx)
	assert.Error(t, err)
	assert.Nil(t, history)
	assert.Equal(t, d, current)
}

func TestTelemetryService_RadarAndGSM(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	r := p.telemetry.IngestRadar(ctx, 90, 152)
	assert.Equal(t, r, p.telemetry.Radar())

	logs, err := p.repo.RecentSensorLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.SensorTypeRadar, logs[0].SensorType)
	assert.Equal(t, 90.0, logs[0].Value1)
	assert.Equal(t, 152.0, *logs[0].Value2)
	assert.Nil(t, logs[0].Value3)

	p.telemetry.IngestGSM(ctx, true)
	assert.True(t, p.telemetry.GSM().Connected)
	assert.Equal(t, testEpoch, p.telemetry.GSM().Timestamp)
}

func TestTelemetryService_TriggerSOS(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, p.profile.Save(ctx, domain.EmergencyProfile{EmergencyContact: "+919800000000"}))
	p.telemetry.IngestLocation(ctx, 12.97, 77.59, 0)

	cmd := p.telemetry.TriggerSOS(ctx, domain.SOSManual, "")
	assert.True(t, cmd.Active)
	assert.Equal(t, defaultSOSMessage+" https://maps.google.com/?q=12.97,77.59", cmd.Message)

	incidents, err := p.repo.RecentIncidents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.IncidentSOS, incidents[0].Type)
	assert.Equal(t, 1, incidents[0].SOSAlert)

	p.clock.Advance(3 * time.Second)
	res := p.telemetry.PollSOS(ctx)
	require.True(t, res.Trigger)
	assert.Equal(t, cmd.Message, res.Message)
	require.NotNil(t, res.TargetContact)
	assert.Equal(t, "+919800000000", *res.TargetContact)

	assert.False(t, p.telemetry.PollSOS(ctx).Trigger)
}

func TestTelemetryService_PollSOSAfterContactCleared(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	require.NoError(t, p.profile.Save(ctx, domain.EmergencyProfile{Name: "Asha", EmergencyContact: "+911111"}))
	p.telemetry.TriggerSOS(ctx, domain.SOSManual, "help")

	require.NoError(t, p.profile.Save(ctx, domain.EmergencyProfile{Name: "Asha"}))
	p.clock.Advance(time.Second)

	res := p.telemetry.PollSOS(ctx)
	require.True(t, res.Trigger)
	assert.Nil(t, res.TargetContact)
}

func TestTelemetryService_ReportedVibrationIsStoredUncapped(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	v := p.telemetry.IngestVibration(ctx, domain.VibrationReading{Left: 1.5, Right: 0.2})
	assert.Equal(t, 1.5, v.Left)

	incidents, err := p.repo.RecentIncidents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, 1.5, incidents[0].Vibration)
}

func TestTelemetryService_DrowsinessSOSText(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	cmd := p.telemetry.TriggerSOS(ctx, domain.SOSDrowsiness, "custom")
	assert.True(t, strings.HasPrefix(cmd.Message, "URGENT: Driver is exceedingly drowsy"))
	assert.NotContains(t, cmd.Message, "maps.google.com")
}

func TestTelemetryService_SOSExpiresUnpolled(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	p.telemetry.TriggerSOS(ctx, domain.SOSManual, "help")
	p.clock.Advance(30001 * time.Millisecond)

	assert.False(t, p.telemetry.PollSOS(ctx).Trigger)
}

func TestTelemetryService_WriteFailuresAreSwallowed(t *testing.T) {
	repo := &brokenRepo{MemoryRepository: postgres.NewMemoryRepository(), err: errors.New("db down")}
	p := newPipeline(repo)
	ctx := context.Background()

	a := p.telemetry.IngestAlcohol(ctx, 95)
	assert.Equal(t, domain.AlcoholHigh, a.Level)
	assert.Equal(t, a, p.telemetry.Alcohol())

	v := p.telemetry.IngestVibration(ctx, domain.VibrationReading{Left: 1})
	assert.Equal(t, v, p.telemetry.Vibration())

	cmd := p.telemetry.TriggerSOS(ctx, domain.SOSManual, "help")
	assert.Empty(t, cmd.TargetContact)
	assert.True(t, p.telemetry.PollSOS(ctx).Trigger, "the SOS command survives a lost incident row")
}

func TestTelemetryService_RecordRoadEvent(t *testing.T) {
	p := newPipeline(postgres.NewMemoryRepository())
	ctx := context.Background()

	res := p.telemetry.RecordRoadEvent(ctx, domain.IncidentRecord{Confidence: 87, Distance: 120})
	require.True(t, res.OK())
	assert.Equal(t, int64(1), res.ID)

	incidents, err := p.telemetry.RecentIncidents(ctx, 50)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, domain.IncidentUnknown, incidents[0].Type)
	assert.Equal(t, testEpoch, incidents[0].CreatedAt)
	assert.Equal(t, 87.0, incidents[0].Confidence)
}
