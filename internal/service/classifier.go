package service

import (
	"fmt"
	"time"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/pkg/utils"
)

const (
	defaultSOSMessage    = "CRITICAL ALERT: Driver triggered SOS! Immediate assistance required."
	drowsinessSOSMessage = "URGENT: Driver is exceedingly drowsy (10+ events). Risk of accident high. Please contact driver."
	mapLinkFormat        = " https://maps.google.com/?q=%v,%v"
)

// Thresholds are the classifier's calibration points
type Thresholds struct {
	VibrationCritical   float64
	VibrationMajor      float64
	VibrationRawDivisor float64
	VibrationMax        float64
	AlcoholModerate     float64
	AlcoholHigh         float64
}

// DefaultThresholds returns the field-tuned values
func DefaultThresholds() Thresholds {
	return Thresholds{
		VibrationCritical:   0.8,
		VibrationMajor:      0.5,
		VibrationRawDivisor: 35000,
		VibrationMax:        1.2,
		AlcoholModerate:     30,
		AlcoholHigh:         70,
	}
}

// Classifier maps one reading to at most one incident candidate.
// It holds no state; gating is applied by the caller.
type Classifier struct {
	th Thresholds
}

func NewClassifier(th Thresholds) Classifier {
	return Classifier{th: th}
}

// NormalizeVibration resolves the two channels of a report. Raw
// accelerometer magnitudes, when both are present, take precedence over
// the sensor's own normalization so sensitivity can be tuned server-side.
// Only raw-derived values are capped; sensor-normalized values pass through.
func (c Classifier) NormalizeVibration(r domain.VibrationReading) (left, right float64) {
	if !r.HasRaw() || c.th.VibrationRawDivisor <= 0 {
		return r.Left, r.Right
	}
	left = utils.Clamp(*r.RawLeft/c.th.VibrationRawDivisor, 0, c.th.VibrationMax)
	right = utils.Clamp(*r.RawRight/c.th.VibrationRawDivisor, 0, c.th.VibrationMax)
	return left, right
}

// VibrationBand classifies the peak channel value
func (c Classifier) VibrationBand(peak float64) domain.VibrationBand {
	switch {
	case peak >= c.th.VibrationCritical:
		return domain.VibrationCritical
	case peak >= c.th.VibrationMajor:
		return domain.VibrationMajor
	default:
		return domain.VibrationNormal
	}
}

// ClassifyVibration returns a Critical Vibration candidate for readings in
// the critical band. The major band is live-only and never yields a record.
func (c Classifier) ClassifyVibration(v domain.Vibration, loc domain.Location, now time.Time) *domain.IncidentRecord {
	peak := v.Peak()
	if c.VibrationBand(peak) != domain.VibrationCritical {
		return nil
	}
	rec := domain.NewIncident(domain.IncidentCriticalVibration, loc, now)
	rec.Vibration = peak
	return &rec
}

// AlcoholLevel bands a 0-100 reading: Normal <= moderate < Moderate <= high < High
func (c Classifier) AlcoholLevel(value float64) domain.AlcoholLevel {
	switch {
	case value > c.th.AlcoholHigh:
		return domain.AlcoholHigh
	case value > c.th.AlcoholModerate:
		return domain.AlcoholModerate
	default:
		return domain.AlcoholNormal
	}
}

// ClassifyAlcohol returns an Alcohol Alert candidate for every High reading
func (c Classifier) ClassifyAlcohol(value float64, loc domain.Location, now time.Time) *domain.IncidentRecord {
	if c.AlcoholLevel(value) != domain.AlcoholHigh {
		return nil
	}
	rec := domain.NewIncident(domain.IncidentAlcoholAlert, loc, now)
	rec.Alcohol = value
	return &rec
}

// ClassifyDrowsiness returns a Drowsiness Alert candidate for every drowsy report
func (c Classifier) ClassifyDrowsiness(isDrowsy bool, loc domain.Location, now time.Time) *domain.IncidentRecord {
	if !isDrowsy {
		return nil
	}
	rec := domain.NewIncident(domain.IncidentDrowsinessAlert, loc, now)
	return &rec
}

// SOSIncident always produces a record; SOS is never gated
func (c Classifier) SOSIncident(loc domain.Location, now time.Time) domain.IncidentRecord {
	rec := domain.NewIncident(domain.IncidentSOS, loc, now)
	rec.SOSAlert = 1
	return rec
}

// ComposeSOSMessage builds the SMS text for the actuator. Drowsiness
// escalations use a fixed text; a map link is appended when loc has a fix.
func ComposeSOSMessage(kind domain.SOSKind, message string, loc domain.Location) string {
	msg := message
	if msg == "" {
		msg = defaultSOSMessage
	}
	if kind == domain.SOSDrowsiness {
		msg = drowsinessSOSMessage
	}
	if loc.Latitude != 0 && loc.Longitude != 0 {
		msg += fmt.Sprintf(mapLinkFormat, loc.Latitude, loc.Longitude)
	}
	return msg
}
