package leadsapi

import (
	"context"

	"go.uber.org/zap"
)

// Service orchestrates validation and persistence of leads. Construct one
// with NewService and inject it into the transport layer; it holds no
// mutable state of its own.
type Service struct {
	store LeadStorer
	log   *zap.SugaredLogger
}

func NewService(store LeadStorer, log *zap.SugaredLogger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// CreateLead validates the input, rejects already-registered emails and
// persists the lead with its service selections. Exactly one storage write
// happens on success, none on any failure. The email pre-check is a fast
// path only; the unique index on email is the authority when two creates
// race (the store surfaces that as the same DuplicateEmailError).
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) (*Lead, error) {
	validated, err := ValidateCreateInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmail(ctx, validated.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateEmailError{Email: validated.Email}
	}

	lead, err := s.store.Create(ctx, validated)
	if err != nil {
		return nil, err
	}

	s.log.Infow("lead created", "id", lead.ID, "services", len(lead.Services))
	return lead, nil
}

// GetLeads returns one page of leads, ordered as requested. Options pass
// through to the store unmodified.
func (s *Service) GetLeads(ctx context.Context, opts GetLeadsOptions) ([]Lead, error) {
	return s.store.FindAll(ctx, opts)
}

// GetLeadByID returns the lead or a NotFoundError. Use FindLeadByID where
// absence is a normal outcome.
func (s *Service) GetLeadByID(ctx context.Context, id string) (*Lead, error) {
	lead, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &NotFoundError{ID: id}
	}
	return lead, nil
}

// FindLeadByID returns the lead, or (nil, nil) when it does not exist.
func (s *Service) FindLeadByID(ctx context.Context, id string) (*Lead, error) {
	return s.store.FindByID(ctx, id)
}

// GetLeadCount returns the total number of registered leads.
func (s *Service) GetLeadCount(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}
