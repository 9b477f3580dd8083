package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

func TestClassifier_AlcoholLevel(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		value float64
		want  domain.AlcoholLevel
	}{
		{0, domain.AlcoholNormal},
		{30, domain.AlcoholNormal},
		{30.01, domain.AlcoholModerate},
		{70, domain.AlcoholModerate},
		{70.5, domain.AlcoholHigh},
		{100, domain.AlcoholHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, c.AlcoholLevel(tt.value), "value %v", tt.value)
	}
}

func TestClassifier_ClassifyAlcohol(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	loc := domain.Location{Latitude: 12.97, Longitude: 77.59}

	assert.Nil(t, c.ClassifyAlcohol(70, loc, testEpoch))

	rec := c.ClassifyAlcohol(82, loc, testEpoch)
	require.NotNil(t, rec)
	assert.Equal(t, domain.IncidentAlcoholAlert, rec.Type)
	assert.Equal(t, 82.0, rec.Alcohol)
	assert.Equal(t, 100.0, rec.Confidence)
	assert.Equal(t, 12.97, rec.Latitude)
	assert.Equal(t, testEpoch, rec.CreatedAt)
}

func TestClassifier_NormalizeVibration(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name      string
		reading   domain.VibrationReading
		wantLeft  float64
		wantRight float64
	}{
		{
			name:      "normalized values pass through",
			reading:   domain.VibrationReading{Left: 0.3, Right: 0.6},
			wantLeft:  0.3,
			wantRight: 0.6,
		},
		{
			name:      "raw values override normalized ones",
			reading:   domain.VibrationReading{Left: 0.1, Right: 0.1, RawLeft: domain.Float(35000), RawRight: domain.Float(17500)},
			wantLeft:  1.0,
			wantRight: 0.5,
		},
		{
			name:      "raw values are capped",
			reading:   domain.VibrationReading{RawLeft: domain.Float(70000), RawRight: domain.Float(0)},
			wantLeft:  1.2,
			wantRight: 0,
		},
		{
			name:      "one raw channel is ignored",
			reading:   domain.VibrationReading{Left: 0.2, Right: 0.4, RawLeft: domain.Float(70000)},
			wantLeft:  0.2,
			wantRight: 0.4,
		},
		{
			name:      "normalized values are not capped",
			reading:   domain.VibrationReading{Left: 1.5, Right: -0.5},
			wantLeft:  1.5,
			wantRight: -0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, r := c.NormalizeVibration(tt.reading)
			assert.InDelta(t, tt.wantLeft, l, 1e-9)
			assert.InDelta(t, tt.wantRight, r, 1e-9)
		})
	}
}

func TestClassifier_VibrationBands(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	assert.Equal(t, domain.VibrationNormal, c.VibrationBand(0.49))
	assert.Equal(t, domain.VibrationMajor, c.VibrationBand(0.5))
	assert.Equal(t, domain.VibrationMajor, c.VibrationBand(0.79))
	assert.Equal(t, domain.VibrationCritical, c.VibrationBand(0.8))

	assert.Nil(t, c.ClassifyVibration(domain.Vibration{Left: 0.7, Right: 0.2}, domain.Location{}, testEpoch))

	rec := c.ClassifyVibration(domain.Vibration{Left: 0.2, Right: 0.95}, domain.Location{}, testEpoch)
	require.NotNil(t, rec)
	assert.Equal(t, domain.IncidentCriticalVibration, rec.Type)
	assert.Equal(t, 0.95, rec.Vibration)
	assert.Equal(t, float64(domain.UnknownDistance), rec.Distance)
}

func TestClassifier_Drowsiness(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	assert.Nil(t, c.ClassifyDrowsiness(false, domain.Location{}, testEpoch))

	rec := c.ClassifyDrowsiness(true, domain.Location{Latitude: 1, Longitude: 2}, testEpoch)
	require.NotNil(t, rec)
	assert.Equal(t, domain.IncidentDrowsinessAlert, rec.Type)
}

func TestClassifier_SOSIncident(t *testing.T) {
	rec := NewClassifier(DefaultThresholds()).SOSIncident(domain.Location{}, testEpoch)

	assert.Equal(t, domain.IncidentSOS, rec.Type)
	assert.Equal(t, 1, rec.SOSAlert)
	assert.Equal(t, 0.0, rec.Vibration)
}

func TestComposeSOSMessage(t *testing.T) {
	fix := domain.Location{Latitude: 12.97, Longitude: 77.59}

	tests := []struct {
		name    string
		kind    domain.SOSKind
		message string
		loc     domain.Location
		want    string
	}{
		{
			name: "default text without a fix",
			kind: domain.SOSManual,
			want: defaultSOSMessage,
		},
		{
			name:    "caller text with map link",
			kind:    domain.SOSManual,
			message: "Help",
			loc:     fix,
			want:    "Help https://maps.google.com/?q=12.97,77.59",
		},
		{
			name:    "drowsiness escalation ignores caller text",
			kind:    domain.SOSDrowsiness,
			message: "ignored",
			loc:     fix,
			want:    drowsinessSOSMessage + " https://maps.google.com/?q=12.97,77.59",
		},
		{
			name:    "half a fix gets no link",
			kind:    domain.SOSManual,
			message: "Help",
			loc:     domain.Location{Latitude: 12.97},
			want:    "Help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeSOSMessage(tt.kind, tt.message, tt.loc))
		})
	}
}
