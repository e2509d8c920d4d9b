package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocumentTypeSalesOrder    DocumentType = "sales_order"
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeCreditMemo    DocumentType = "credit_memo"
	DocumentTypeDebitMemo     DocumentType = "debit_memo"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
	DocumentTypeItemReceipt   DocumentType = "item_receipt"
	DocumentTypeVendorBill    DocumentType = "vendor_bill"
	DocumentTypeVendorCredit  DocumentType = "vendor_credit"
)

type documentTypeInfo struct {
	prefix    string
	partyKind PartyKind
	stock     InventoryDirection
}

var documentTypes = map[DocumentType]documentTypeInfo{
	DocumentTypeSalesOrder:    {prefix: "SO", partyKind: PartyKindCustomer},
	DocumentTypeInvoice:       {prefix: "INV", partyKind: PartyKindCustomer, stock: InventoryOut},
	DocumentTypeCreditMemo:    {prefix: "CM", partyKind: PartyKindCustomer, stock: InventoryIn},
	DocumentTypeDebitMemo:     {prefix: "DM", partyKind: PartyKindCustomer},
	DocumentTypePurchaseOrder: {prefix: "PO", partyKind: PartyKindVendor},
	DocumentTypeItemReceipt:   {prefix: "IR", partyKind: PartyKindVendor, stock: InventoryIn},
	DocumentTypeVendorBill:    {prefix: "BILL", partyKind: PartyKindVendor},
	DocumentTypeVendorCredit:  {prefix: "VC", partyKind: PartyKindVendor, stock: InventoryOut},
}

func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeSalesOrder, DocumentTypeInvoice, DocumentTypeCreditMemo, DocumentTypeDebitMemo,
		DocumentTypePurchaseOrder, DocumentTypeItemReceipt, DocumentTypeVendorBill, DocumentTypeVendorCredit,
	}
}

func (t DocumentType) IsValid() bool {
	_, ok := documentTypes[t]
	return ok
}

// NumberPrefix is the prefix used for this type's document numbers.
func (t DocumentType) NumberPrefix() string {
	return documentTypes[t].prefix
}

// PartyKind is the kind of party a document of this type is issued to.
func (t DocumentType) PartyKind() PartyKind {
	return documentTypes[t].partyKind
}

// StockDirection reports how inventory lines on this document move stock.
// An empty direction means the document does not move stock.
func (t DocumentType) StockDirection() InventoryDirection {
	return documentTypes[t].stock
}

type DocumentStatus string

const (
	DocumentStatusDraft  DocumentStatus = "draft"
	DocumentStatusOpen   DocumentStatus = "open"
	DocumentStatusClosed DocumentStatus = "closed"
	DocumentStatusVoid   DocumentStatus = "void"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft: {DocumentStatusOpen, DocumentStatusVoid},
	DocumentStatusOpen:  {DocumentStatusClosed, DocumentStatusVoid},
}

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusOpen, DocumentStatusClosed, DocumentStatusVoid:
		return true
	}
	return false
}

func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Editable reports whether lines may still be added or removed.
func (s DocumentStatus) Editable() bool {
	return s == DocumentStatusDraft || s == DocumentStatusOpen
}

type Document struct {
	ID           uuid.UUID
	Type         DocumentType
	Number       string
	PartyID      uuid.UUID
	Status       DocumentStatus
	DocumentDate time.Time
	DueDate      *time.Time
	Memo         *string
	Total        decimal.Decimal
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []DocumentLine
}

type DocumentLine struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	LineNo      int
	ItemID      *uuid.UUID
	AccountID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// LineAmount is quantity × unit price rounded to cents.
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// SumLines totals the line amounts.
func SumLines(lines []DocumentLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

type DocumentFilter struct {
	Type     DocumentType
	PartyID  *uuid.UUID
	Status   *DocumentStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     Page
}
