// Package app wires repositories and services over one database pool. The
// API server and the admin CLI share it.
package app

import (
	"database/sql"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/handler"
	"github.com/josh-kwaku/backoffice/internal/metrics"
	"github.com/josh-kwaku/backoffice/internal/repository"
	"github.com/josh-kwaku/backoffice/internal/sequence"
	"github.com/josh-kwaku/backoffice/internal/server"
	"github.com/josh-kwaku/backoffice/internal/service"
)

type Services struct {
	Accounts    *service.AccountService
	Parties     *service.PartyService
	Items       *service.ItemService
	Inventory   *service.InventoryService
	Documents   *service.DocumentService
	Journals    *service.JournalService
	Idempotency *repository.IdempotencyRepository
}

func NewServices(db *sql.DB, collector metrics.Collector) *Services {
	txDB := repository.NewDB(db)
	accountRepo := repository.NewAccountRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	itemRepo := repository.NewItemRepository(db)
	numbers := sequence.NewGenerator(repository.NewSequenceRepository())

	accounts := service.NewAccountService(accountRepo, txDB, collector)
	inventory := service.NewInventoryService(repository.NewInventoryRepository(db), itemRepo, txDB)

	return &Services{
		Accounts:  accounts,
		Parties:   service.NewPartyService(partyRepo),
		Items:     service.NewItemService(itemRepo, accountRepo),
		Inventory: inventory,
		Documents: service.NewDocumentService(
			repository.NewDocumentRepository(db),
			partyRepo,
			itemRepo,
			accountRepo,
			inventory,
			numbers,
			txDB,
		),
		Journals:    service.NewJournalService(repository.NewJournalRepository(db), accounts, numbers, txDB, collector),
		Idempotency: repository.NewIdempotencyRepository(db),
	}
}

// Handlers builds the HTTP handlers for s.
func (s *Services) Handlers(db *sql.DB, version string, paging handler.Paging) server.Handlers {
	h := server.Handlers{
		Health:    handler.NewHealthHandler(db, version),
		Accounts:  handler.NewAccountHandler(s.Accounts, paging),
		Customers: handler.NewPartyHandler(s.Parties, domain.PartyKindCustomer, paging),
		Vendors:   handler.NewPartyHandler(s.Parties, domain.PartyKindVendor, paging),
		Items:     handler.NewItemHandler(s.Items, paging),
		Inventory: handler.NewInventoryHandler(s.Inventory, paging),
		Journals:  handler.NewJournalHandler(s.Journals, paging),
		Documents: make(map[string]*handler.DocumentHandler, len(handler.DocumentRoutes)),
	}
	for collection, docType := range handler.DocumentRoutes {
		h.Documents[collection] = handler.NewDocumentHandler(s.Documents, collection, docType, paging)
	}
	return h
}
