package http

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
	"github.com/abhishekmmb18-lang/Enigma/internal/service"
)

const (
	serviceName = "vehicle-telemetry"

	// recentLimit bounds every history read
	recentLimit = 50
)

// HealthChecker reports storage connectivity
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler contains all HTTP handlers
type Handler struct {
	telemetry *service.TelemetryService
	status    *service.StatusService
	profiles  *service.ProfileService
	storage   HealthChecker
	logger    *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(
	telemetry *service.TelemetryService,
	status *service.StatusService,
	profiles *service.ProfileService,
	storage HealthChecker,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		telemetry: telemetry,
		status:    status,
		profiles:  profiles,
		storage:   storage,
		logger:    logger,
	}
}

func respondOK(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// HealthCheck returns storage health and how fresh each sensor is
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status, storage := "ok", "ok"
	if err := h.storage.Health(c.Context()); err != nil {
		status, storage = "degraded", err.Error()
	}

	sensors := fiber.Map{}
	for class, seen := range h.telemetry.LastSeen() {
		sensors[string(class)] = fiber.Map{
			"last_seen": seen,
			"age":       humanize.Time(seen),
		}
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"service": serviceName,
		"storage": storage,
		"sensors": sensors,
	})
}

// PostRoadData inserts an incident classified on the vehicle
func (h *Handler) PostRoadData(c *fiber.Ctx) error {
	b := decodeBody(c)

	rec := domain.IncidentRecord{
		Type:            domain.IncidentType(b.stringOr("type", string(domain.IncidentUnknown))),
		Confidence:      b.floatOr("confidence", 0),
		Vibration:       b.floatOr("vibration", 0),
		Latitude:        b.floatOr("latitude", 0),
		Longitude:       b.floatOr("longitude", 0),
		Distance:        b.floatOr("distance", domain.UnknownDistance),
		Temperature:     b.floatOr("temperature", 0),
		Humidity:        b.floatOr("humidity", 0),
		Alcohol:         b.floatOr("alcohol", 0),
		NetworkStrength: b.floatOr("network_strength", 0),
		SOSAlert:        int(b.floatOr("sos_alert", 0)),
		GSMConnected:    int(b.floatOr("gsm_connected", 0)),
	}

	res := h.telemetry.RecordRoadEvent(c.Context(), rec)

	resp := fiber.Map{
		"success": true,
		"message": "Event logged successfully",
	}
	if res.OK() {
		resp["id"] = res.ID
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetRoadData returns the newest incidents
func (h *Handler) GetRoadData(c *fiber.Ctx) error {
	recs, err := h.telemetry.RecentIncidents(c.Context(), recentLimit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(recs)
}

func (h *Handler) PostDrowsiness(c *fiber.Ctx) error {
	b := decodeBody(c)
	h.telemetry.IngestDrowsiness(c.Context(), b.truthy("isDrowsy"), b.integer("events"))
	return respondOK(c)
}

// GetDrowsiness returns the current driver state with recent history.
// When history is unavailable the bare current state is returned.
func (h *Handler) GetDrowsiness(c *fiber.Ctx) error {
	current, history, err := h.telemetry.DrowsinessStatus(c.Context())
	if err != nil {
		h.logger.Warn("drowsiness history unavailable", zap.Error(err))
		return c.JSON(current)
	}
	return c.JSON(fiber.Map{
		"current": current,
		"history": history,
	})
}

func (h *Handler) PostRadar(c *fiber.Ctx) error {
	b := decodeBody(c)
	h.telemetry.IngestRadar(c.Context(), b.integer("angle"), b.integer("distance"))
	return respondOK(c)
}

func (h *Handler) GetRadar(c *fiber.Ctx) error {
	return c.JSON(h.telemetry.Radar())
}

// PostVibration accepts normalized channels and, optionally, raw
// accelerometer magnitudes which take precedence
func (h *Handler) PostVibration(c *fiber.Ctx) error {
	b := decodeBody(c)

	reading := domain.VibrationReading{
		Left:  b.float("left"),
		Right: b.float("right"),
	}
	if b.has("raw_left") && b.has("raw_right") {
		reading.RawLeft = domain.Float(b.float("raw_left"))
		reading.RawRight = domain.Float(b.float("raw_right"))
	}

	h.telemetry.IngestVibration(c.Context(), reading)
	return respondOK(c)
}

func (h *Handler) GetVibration(c *fiber.Ctx) error {
	return c.JSON(h.telemetry.Vibration())
}

func (h *Handler) PostGSMStatus(c *fiber.Ctx) error {
	b := decodeBody(c)
	h.telemetry.IngestGSM(c.Context(), b.truthy("connected"))
	return respondOK(c)
}

// GetGSMStatus returns the modem state with the SOS alert count
func (h *Handler) GetGSMStatus(c *fiber.Ctx) error {
	status, err := h.status.GSMStatus(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(status)
}

func (h *Handler) PostAlcohol(c *fiber.Ctx) error {
	b := decodeBody(c)
	h.telemetry.IngestAlcohol(c.Context(), b.float("value"))
	return respondOK(c)
}

func (h *Handler) GetAlcohol(c *fiber.Ctx) error {
	return c.JSON(h.telemetry.Alcohol())
}

// PostLocation always succeeds; a report without a fix is ignored
func (h *Handler) PostLocation(c *fiber.Ctx) error {
	b := decodeBody(c)
	h.telemetry.IngestLocation(c.Context(), b.float("latitude"), b.float("longitude"), b.float("speed"))
	return respondOK(c)
}

func (h *Handler) GetLocation(c *fiber.Ctx) error {
	return c.JSON(h.telemetry.Location())
}

// GetSensorLogs returns the newest raw samples
func (h *Handler) GetSensorLogs(c *fiber.Ctx) error {
	recs, err := h.telemetry.RecentSensorLogs(c.Context(), recentLimit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(recs)
}

// PostSOS records an SOS incident and queues the alert for the GSM module
func (h *Handler) PostSOS(c *fiber.Ctx) error {
	b := decodeBody(c)

	kind := domain.SOSKind(b.stringOr("type", string(domain.SOSManual)))
	h.telemetry.TriggerSOS(c.Context(), kind, b.stringOr("message", ""))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "SOS Alert Queued for GSM Module",
	})
}

// CheckSOS is polled by the GSM module; a queued alert is returned once
func (h *Handler) CheckSOS(c *fiber.Ctx) error {
	return c.JSON(h.telemetry.PollSOS(c.Context()))
}

// GetProfile returns the emergency profile, or {} when none is saved
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	p, found, err := h.profiles.Profile(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !found {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(p)
}

func (h *Handler) PostProfile(c *fiber.Ctx) error {
	b := decodeBody(c)

	p := domain.EmergencyProfile{
		Name:             b.stringOr("name", ""),
		EmergencyContact: b.stringOr("emergency_contact", ""),
		BloodGroup:       b.stringOr("blood_group", ""),
	}
	if err := h.profiles.Save(c.Context(), p); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Emergency Profile Updated",
	})
}

// GetStatus returns the dashboard roll-up
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	summary, err := h.status.Summary(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(summary)
}
