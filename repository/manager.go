package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/uptrace/bun"
)

// RepositoryManager groups the repositories sharing a database handle.
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Users() *Users
	Accounts() *Accounts
}

type mngr struct {
	db       *bun.DB
	users    *Users
	accounts *Accounts
}

// NewRepositoryManager wires the users and accounts repositories to db.
func NewRepositoryManager(db *bun.DB, opts ...Option) RepositoryManager {
	return &mngr{
		db:       db,
		users:    NewUsers(db, opts...),
		accounts: NewAccounts(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
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

func (m mngr) Users() *Users {
	return m.users
}

func (m mngr) Accounts() *Accounts {
	return m.accounts
}
