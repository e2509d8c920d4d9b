package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
)

type PartyService struct {
	parties partyRepository
}

func NewPartyService(parties partyRepository) *PartyService {
	return &PartyService{parties: parties}
}

type CreatePartyInput struct {
	Name  string
	Email *string
	Phone *string
}

type UpdatePartyInput struct {
	Name     *string
	Email    *string
	Phone    *string
	IsActive *bool
}

func (s *PartyService) CreateParty(ctx context.Context, kind domain.PartyKind, in CreatePartyInput) (*domain.Party, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("CreateParty: kind %q: %w", kind, domain.ErrInvalidRequest)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("CreateParty: name is required: %w", domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	p := &domain.Party{
		ID:        uuid.New(),
		Kind:      kind,
		Name:      name,
		Email:     in.Email,
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.parties.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("CreateParty: %w", err)
	}

	logging.FromContext(ctx).Info("party created", "party_id", p.ID, "kind", kind)
	return p, nil
}

// GetParty returns the party only when it is of the requested kind, so a
// vendor is never served from the customers endpoint.
func (s *PartyService) GetParty(ctx context.Context, kind domain.PartyKind, id uuid.UUID) (*domain.Party, error) {
	p, err := s.parties.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetParty: %w", err)
	}
	if p.Kind != kind {
		return nil, fmt.Errorf("GetParty: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (s *PartyService) ListParties(ctx context.Context, f domain.PartyFilter) ([]domain.Party, int, error) {
	parties, total, err := s.parties.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("ListParties: %w", err)
	}
	return parties, total, nil
}

func (s *PartyService) UpdateParty(ctx context.Context, kind domain.PartyKind, id uuid.UUID, in UpdatePartyInput) (*domain.Party, error) {
	p, err := s.GetParty(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateParty: %w", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("UpdateParty: name must not be empty: %w", domain.ErrInvalidRequest)
		}
		p.Name = name
	}
	if in.Email != nil {
		p.Email = in.Email
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.parties.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("UpdateParty: %w", err)
	}
	return p, nil
}

// resolveParty checks that a document's party exists and matches the kind the
// document type requires.
func resolveParty(ctx context.Context, parties partyRepository, id uuid.UUID, kind domain.PartyKind) (*domain.Party, error) {
	p, err := parties.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("party %s does not exist: %w", id, domain.ErrInvalidOperation)
	}
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, fmt.Errorf("party %s is a %s, expected %s: %w", id, p.Kind, kind, domain.ErrInvalidOperation)
	}
	return p, nil
}
