package service

import (
	"context"
	"errors"

	"github.com/abhishekmmb18-lang/Enigma/internal/domain"
)

// ProfileService manages the single emergency profile
type ProfileService struct {
	repo EventRepository
}

// NewProfileService creates a new profile service
func NewProfileService(repo EventRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Profile returns the saved profile; ok is false when none exists
func (s *ProfileService) Profile(ctx context.Context) (p domain.EmergencyProfile, ok bool, err error) {
	p, err = s.repo.EmergencyProfile(ctx)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return domain.EmergencyProfile{}, false, nil
	}
	if err != nil {
		return domain.EmergencyProfile{}, false, err
	}
	return p, true, nil
}

// Save replaces the profile
func (s *ProfileService) Save(ctx context.Context, p domain.EmergencyProfile) error {
	return s.repo.SaveEmergencyProfile(ctx, p)
}

// EmergencyContact implements ContactResolver. A missing profile is not an
// error; it yields an empty contact.
func (s *ProfileService) EmergencyContact(ctx context.Context) (string, error) {
	p, _, err := s.Profile(ctx)
	if err != nil {
		return "", err
	}
	return p.EmergencyContact, nil
}
