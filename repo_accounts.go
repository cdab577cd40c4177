package federation

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// AccountsRepository implements Accounts using Bun. It accepts a bun.IDB so
// the same repository can run against the database or an open transaction.
type AccountsRepository struct {
	db bun.IDB
}

// NewAccountsRepository creates a new repository.
func NewAccountsRepository(db bun.IDB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

// FindByID implements Accounts.
func (r *AccountsRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	account := &Account{}
	err := r.db.NewSelect().
		Model(account).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FindByEmail implements Accounts.
func (r *AccountsRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	account := &Account{}
	err := r.db.NewSelect().
		Model(account).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Save inserts new accounts and updates existing ones. Inserts assign the
// autoincrement id on the record.
func (r *AccountsRepository) Save(ctx context.Context, account *Account) (*Account, error) {
	now := time.Now()

	if account.ID == 0 {
		account.CreatedAt = now
		account.UpdatedAt = now
		if _, err := r.db.NewInsert().Model(account).Exec(ctx); err != nil {
			return nil, err
		}
		return account, nil
	}

	account.UpdatedAt = now
	_, err := r.db.NewUpdate().
		Model(account).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return account, nil
}
