package domain

import "time"

// IncidentType tags a road event row
type IncidentType string

const (
	IncidentUnknown           IncidentType = "Unknown"
	IncidentPothole           IncidentType = "Pothole"
	IncidentAccident          IncidentType = "Accident"
	IncidentCriticalVibration IncidentType = "Critical Vibration"
	IncidentAlcoholAlert      IncidentType = "Alcohol Alert"
	IncidentDrowsinessAlert   IncidentType = "Drowsiness Alert"
	IncidentSOS               IncidentType = "SOS"
)

// UnknownDistance marks a record with no range-finder reading
const UnknownDistance = -1

// IncidentRecord is one append-only road_events row
type IncidentRecord struct {
	ID              int64        `json:"id"`
	Type            IncidentType `json:"type"`
	Confidence      float64      `json:"confidence"`
	Vibration       float64      `json:"vibration"`
	Latitude        float64      `json:"latitude"`
	Longitude       float64      `json:"longitude"`
	Distance        float64      `json:"distance"`
	Temperature     float64      `json:"temperature"`
	Humidity        float64      `json:"humidity"`
	Alcohol         float64      `json:"alcohol"`
	NetworkStrength float64      `json:"network_strength"`
	SOSAlert        int          `json:"sos_alert"`
	GSMConnected    int          `json:"gsm_connected"`
	CreatedAt       time.Time    `json:"created_at"`
}

// NewIncident builds a classifier-derived record pinned to loc.
// Fields the classifier does not know keep their sentinel defaults.
func NewIncident(t IncidentType, loc Location, at time.Time) IncidentRecord {
	return IncidentRecord{
		Type:       t,
		Confidence: 100,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		Distance:   UnknownDistance,
		CreatedAt:  at,
	}
}

// SensorType tags a raw sensor_logs sample
type SensorType string

const (
	SensorTypeRadar     SensorType = "Radar"
	SensorTypeVibration SensorType = "Vibration"
	SensorTypeAlcohol   SensorType = "Alcohol"
	SensorTypeGPS       SensorType = "GPS"
)

// SensorLogRecord is one raw-sample audit row
type SensorLogRecord struct {
	ID         int64      `json:"id"`
	SensorType SensorType `json:"sensor_type"`
	Value1     float64    `json:"value_1"`
	Value2     *float64   `json:"value_2"`
	Value3     *float64   `json:"value_3"`
	Timestamp  time.Time  `json:"timestamp"`
}

// DrowsinessLogRecord is one drowsiness report as received
type DrowsinessLogRecord struct {
	ID          int64     `json:"id"`
	IsDrowsy    bool      `json:"is_drowsy"`
	EventsCount int       `json:"events_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// EmergencyProfile is the single driver profile used for SOS hand-off
type EmergencyProfile struct {
	Name             string `json:"name"`
	EmergencyContact string `json:"emergency_contact"`
	BloodGroup       string `json:"blood_group"`
}

// Float returns a pointer to v, for optional sensor log columns
func Float(v float64) *float64 {
	return &v
}
