package domain

import "time"

// SensorClass identifies one latest-value snapshot slot
type SensorClass string

const (
	SensorLocation   SensorClass = "location"
	SensorVibration  SensorClass = "vibration"
	SensorAlcohol    SensorClass = "alcohol"
	SensorDrowsiness SensorClass = "drowsiness"
	SensorRadar      SensorClass = "radar"
	SensorGSM        SensorClass = "gsm"
)

// Location is the last good GPS fix
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"` // km/h
	Timestamp time.Time `json:"timestamp"`
}

// HasFix reports whether the location carries a usable coordinate.
// Hardware GPS without a fix reports (0, 0).
func (l Location) HasFix() bool {
	return l.Latitude != 0 || l.Longitude != 0
}

// VibrationBand is the live severity band of a vibration reading
type VibrationBand string

const (
	VibrationNormal   VibrationBand = "Normal"
	VibrationMajor    VibrationBand = "Major"
	VibrationCritical VibrationBand = "Critical"
)

// Vibration is the latest dual-accelerometer reading, normalized to [0, 1.2]
type Vibration struct {
	Left      float64       `json:"left"`
	Right     float64       `json:"right"`
	Band      VibrationBand `json:"band"`
	Timestamp time.Time     `json:"timestamp"`
}

// Peak returns the larger of the two channels
func (v Vibration) Peak() float64 {
	if v.Left > v.Right {
		return v.Left
	}
	return v.Right
}

// AlcoholLevel is the MQ-3 classification band
type AlcoholLevel string

const (
	AlcoholNormal   AlcoholLevel = "Normal"
	AlcoholModerate AlcoholLevel = "Moderate"
	AlcoholHigh     AlcoholLevel = "High"
)

// Alcohol is the latest gas sensor reading on a 0-100 scale
type Alcohol struct {
	Value     float64      `json:"value"`
	Level     AlcoholLevel `json:"level"`
	Timestamp time.Time    `json:"timestamp"`
}

// Drowsiness is the latest camera-derived driver state
type Drowsiness struct {
	IsDrowsy  bool      `json:"isDrowsy"`
	Events    int       `json:"events"`
	Timestamp time.Time `json:"timestamp"`
}

// Radar is the latest LiDAR sweep sample
type Radar struct {
	Angle     int       `json:"angle"`
	Distance  int       `json:"distance"` // cm
	Timestamp time.Time `json:"timestamp"`
}

// GSM is the modem link state reported by the vehicle
type GSM struct {
	Connected bool      `json:"connected"`
	Timestamp time.Time `json:"timestamp"`
}

// VibrationReading is a coerced vibration report.
// RawLeft/RawRight are set only when the sensor sent raw magnitudes.
type VibrationReading struct {
	Left     float64
	Right    float64
	RawLeft  *float64
	RawRight *float64
}

// HasRaw reports whether both raw channels were supplied
func (r VibrationReading) HasRaw() bool {
	return r.RawLeft != nil && r.RawRight != nil
}
