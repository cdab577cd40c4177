package federation

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	IdentityLinks() IdentityLinks
	MetricEvents() repository.Repository[*MetricEvent]
	// WithTx returns a manager whose account and link stores run against tx.
	WithTx(tx bun.IDB) RepositoryManager
}

func NewMetricEventsRepository(db *bun.DB) repository.Repository[*MetricEvent] {
	handlers := repository.ModelHandlers[*MetricEvent]{
		NewRecord: func() *MetricEvent {
			return &MetricEvent{}
		},
		GetID: func(record *MetricEvent) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *MetricEvent, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "event_type"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db           *bun.DB
	accounts     Accounts
	links        IdentityLinks
	metricEvents repository.Repository[*MetricEvent]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:           db,
		accounts:     NewAccountsRepository(db),
		links:        NewIdentityLinksRepository(db),
		metricEvents: NewMetricEventsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.links == nil {
		return errors.New("repository identity links should be initialized")
	}

	if m.metricEvents == nil {
		return errors.New("repository metric events should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) WithTx(tx bun.IDB) RepositoryManager {
	return &mngr{
		db:           m.db,
		accounts:     NewAccountsRepository(tx),
		links:        NewIdentityLinksRepository(tx),
		metricEvents: m.metricEvents,
	}
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) IdentityLinks() IdentityLinks {
	return m.links
}

func (m mngr) MetricEvents() repository.Repository[*MetricEvent] {
	return m.metricEvents
}
