package domain

import "time"

// SOSKind is who asked for the SOS
type SOSKind string

const (
	SOSManual     SOSKind = "manual"
	SOSDrowsiness SOSKind = "drowsiness"
)

// SOSCommand is the single mailbox slot handed to the GSM actuator
type SOSCommand struct {
	ID            string    `json:"id"`
	Active        bool      `json:"active"`
	Message       string    `json:"message"`
	TargetContact string    `json:"target_contact,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SOSPollResult is what the actuator sees on /api/sos/check
type SOSPollResult struct {
	Trigger       bool    `json:"trigger"`
	Message       string  `json:"message,omitempty"`
	TargetContact *string `json:"target_contact,omitempty"`
}
