package domain

import (
	"time"

	"github.com/google/uuid"
)

type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindVendor   PartyKind = "vendor"
)

func (k PartyKind) IsValid() bool {
	return k == PartyKindCustomer || k == PartyKindVendor
}

// Party is a customer or a vendor.
type Party struct {
	ID        uuid.UUID
	Kind      PartyKind
	Name      string
	Email     *string
	Phone     *string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PartyFilter struct {
	Kind     PartyKind
	IsActive *bool
	Search   string
	Page     Page
}
