package federation

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// IdentityLinksRepository implements IdentityLinks using Bun.
type IdentityLinksRepository struct {
	db bun.IDB
}

// NewIdentityLinksRepository creates a new repository.
func NewIdentityLinksRepository(db bun.IDB) *IdentityLinksRepository {
	return &IdentityLinksRepository{db: db}
}

// FindByProviderAndSubject implements IdentityLinks.
func (r *IdentityLinksRepository) FindByProviderAndSubject(ctx context.Context, provider, subjectID string) (*IdentityLink, error) {
	link := &IdentityLink{}
	err := r.db.NewSelect().
		Model(link).
		Where("?TableAlias.provider_name = ? AND ?TableAlias.provider_subject_id = ?", provider, subjectID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// FindByAccountID implements IdentityLinks.
func (r *IdentityLinksRepository) FindByAccountID(ctx context.Context, accountID int64) ([]*IdentityLink, error) {
	var links []*IdentityLink
	err := r.db.NewSelect().
		Model(&links).
		Where("?TableAlias.account_id = ?", accountID).
		Order("linked_at ASC").
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*IdentityLink{}, nil
		}
		return nil, err
	}
	return links, nil
}

// CountByAccountID implements IdentityLinks.
func (r *IdentityLinksRepository) CountByAccountID(ctx context.Context, accountID int64) (int, error) {
	return r.db.NewSelect().
		Model((*IdentityLink)(nil)).
		Where("?TableAlias.account_id = ?", accountID).
		Count(ctx)
}

// Save inserts new links and updates existing ones.
func (r *IdentityLinksRepository) Save(ctx context.Context, link *IdentityLink) (*IdentityLink, error) {
	if link.ID == 0 {
		if link.LinkedAt.IsZero() {
			link.LinkedAt = time.Now()
		}
		if _, err := r.db.NewInsert().Model(link).Exec(ctx); err != nil {
			return nil, err
		}
		return link, nil
	}

	_, err := r.db.NewUpdate().
		Model(link).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// TouchLastUsed implements IdentityLinks.
func (r *IdentityLinksRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*IdentityLink)(nil)).
		Set("last_used_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
