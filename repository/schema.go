package repository

import (
	"context"
	"fmt"

	"github.com/goliatone/go-identity"
	"github.com/uptrace/bun"
)

// CreateSchema creates the users and accounts tables when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*identity.User)(nil),
		(*AccountModel)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}

	_, err := db.NewCreateIndex().
		Model((*AccountModel)(nil)).
		Index("uq_accounts_provider_account").
		Unique().
		Column("provider", "provider_account_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*AccountModel)(nil)).
		Index("idx_accounts_user_id").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create accounts index: %w", err)
	}

	return nil
}
