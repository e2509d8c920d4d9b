package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

const Operator = "test-operator"

// SeedAccount inserts an account directly, bypassing propagation. An empty
// balance leaves running_balance NULL.
func SeedAccount(t *testing.T, db *sql.DB, code string, accountType domain.AccountType, parent *domain.Account, isParent bool, balance string) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.Account{
		ID:        uuid.New(),
		Code:      code,
		Name:      code,
		Type:      accountType,
		IsParent:  isParent,
		IsActive:  true,
		CreatedBy: Operator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parent != nil {
		a.ParentID = &parent.ID
	}
	if balance != "" {
		a.SetBalance(decimal.RequireFromString(balance))
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, code, name, account_type, parent_id, is_parent,
			opening_balance, running_balance, is_active, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11)`,
		a.ID, a.Code, a.Name, a.Type, a.ParentID, a.IsParent,
		a.RunningBalance, a.IsActive, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", code, err)
	}
	return a
}

func SeedParty(t *testing.T, db *sql.DB, kind domain.PartyKind, name string) *domain.Party {
	t.Helper()

	p := &domain.Party{ID: uuid.New(), Kind: kind, Name: name, IsActive: true, CreatedAt: time.Now().UTC()}
	p.UpdatedAt = p.CreatedAt
	_, err := db.Exec(
		`INSERT INTO parties (id, kind, name, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Kind, p.Name, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed party %s: %v", name, err)
	}
	return p
}

func SeedItem(t *testing.T, db *sql.DB, sku string, kind domain.ItemKind, price, onHand string) *domain.Item {
	t.Helper()

	i := &domain.Item{
		ID:             uuid.New(),
		SKU:            sku,
		Name:           sku,
		Kind:           kind,
		UnitPrice:      decimal.RequireFromString(price),
		UnitCost:       decimal.Zero,
		QuantityOnHand: decimal.RequireFromString(onHand),
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	i.UpdatedAt = i.CreatedAt
	_, err := db.Exec(
		`INSERT INTO items (id, sku, name, kind, unit_price, unit_cost, quantity_on_hand, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		i.ID, i.SKU, i.Name, i.Kind, i.UnitPrice, i.UnitCost, i.QuantityOnHand, i.IsActive, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed item %s: %v", sku, err)
	}
	return i
}

// GetRunningBalance reads an account's stored running balance.
func GetRunningBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.NullDecimal {
	t.Helper()

	var balance decimal.NullDecimal
	err := db.QueryRow(`SELECT running_balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get running balance %s: %v", accountID, err)
	}
	return balance
}

func GetQuantityOnHand(t *testing.T, db *sql.DB, itemID uuid.UUID) decimal.Decimal {
	t.Helper()

	var qty decimal.Decimal
	err := db.QueryRow(`SELECT quantity_on_hand FROM items WHERE id = $1`, itemID).Scan(&qty)
	if err != nil {
		t.Fatalf("get quantity on hand %s: %v", itemID, err)
	}
	return qty
}
