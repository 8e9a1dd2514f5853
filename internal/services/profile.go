package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Profiles is the accessor for the 1:1 principal profile record.
type Profiles struct {
	session  backend.SessionProvider
	store    backend.Store
	notifier backend.Notifier
	logger   *log.Logger
}

func NewProfiles(session backend.SessionProvider, store backend.Store, notifier backend.Notifier, logger *log.Logger) *Profiles {
	return &Profiles{
		session:  session,
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentProfile),
	}
}

// Get returns the principal's profile, creating an empty one on first
// access so the update path always has a record to patch.
func (s *Profiles) Get(ctx context.Context) (*core.Profile, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to view your profile.")
		return nil, ErrUnauthenticated
	}

	recs, err := s.store.List(ctx, backend.CollectionProfiles,
		[]backend.Filter{{Field: "id", Value: owner}}, backend.Order{})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch profile", log.FieldError, err, log.FieldOwner, owner)
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if len(recs) > 0 {
		p := decodeProfile(recs[0])
		return &p, nil
	}

	rec, err := s.store.Insert(ctx, backend.CollectionProfiles, backend.Record{"id": owner})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create profile", log.FieldError, err, log.FieldOwner, owner)
		return nil, fmt.Errorf("create profile: %w", err)
	}
	p := decodeProfile(rec)
	return &p, nil
}

// Update sets the display name fields and bumps updated_at.
func (s *Profiles) Update(ctx context.Context, firstName, lastName string) (*core.Profile, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to update your profile.")
		return nil, ErrUnauthenticated
	}

	// First access may not have created the record yet.
	if _, err := s.Get(ctx); err != nil {
		s.notifier.Warn(ctx, "Failed to update profile.")
		return nil, err
	}

	rec, err := s.store.Update(ctx, backend.CollectionProfiles, owner, backend.Record{
		"first_name": firstName,
		"last_name":  lastName,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update profile", log.FieldError, err, log.FieldOwner, owner)
		s.notifier.Warn(ctx, "Failed to update profile.")
		return nil, fmt.Errorf("update profile: %w", err)
	}

	p := decodeProfile(rec)
	s.notifier.Info(ctx, "Profile updated successfully!")
	return &p, nil
}
