package chart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/logging"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type accountCreator interface {
	CreateAccount(ctx context.Context, in service.CreateAccountInput) (*domain.Account, error)
}

// Seed creates every account of c parent-first. Running balances given on
// leaves roll up to their ancestors as each leaf is created. Seeding stops at
// the first failure; accounts created before it are kept.
func Seed(ctx context.Context, accounts accountCreator, c *Chart, operator string) ([]*domain.Account, error) {
	entries, err := c.Flatten()
	if err != nil {
		return nil, fmt.Errorf("Seed: %w", err)
	}

	ids := make(map[string]uuid.UUID, len(entries))
	created := make([]*domain.Account, 0, len(entries))
	for _, e := range entries {
		in := service.CreateAccountInput{
			Code:           e.Code,
			Name:           e.Name,
			Type:           e.Type,
			IsParent:       e.IsParent,
			OpeningBalance: e.OpeningBalance,
			RunningBalance: e.RunningBalance,
			CreatedBy:      operator,
		}
		if e.Description != "" {
			desc := e.Description
			in.Description = &desc
		}
		if e.ParentCode != "" {
			parentID := ids[e.ParentCode]
			in.ParentID = &parentID
		}

		a, err := accounts.CreateAccount(ctx, in)
		if err != nil {
			return created, fmt.Errorf("Seed: account %s: %w", e.Code, err)
		}
		ids[e.Code] = a.ID
		created = append(created, a)
	}

	logging.FromContext(ctx).Info("chart seeded", "chart", c.Name, "accounts", len(created))
	return created, nil
}
