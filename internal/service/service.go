package service

import (
	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

// EventRepository is re-exported from domain for convenience
type EventRepository = domain.EventRepository
