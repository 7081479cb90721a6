package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/uptrace/bun"
)

// Users implements identity.UserStore using Bun.
type Users struct {
	db     *bun.DB
	logger identity.Logger
	now    func() time.Time
}

var (
	_ identity.UserStore  = (*Users)(nil)
	_ identity.UserFinder = (*Users)(nil)
)

// Option configures repositories.
type Option func(*options)

type options struct {
	logger identity.Logger
	now    func() time.Time
}

// WithLogger sets the repository logger.
func WithLogger(logger identity.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock injects the clock used for updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts ...Option) options {
	o := options{logger: nopLogger{}, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	return o
}

// NewUsers creates a new users repository.
func NewUsers(db *bun.DB, opts ...Option) *Users {
	o := buildOptions(opts...)
	return &Users{db: db, logger: o.logger, now: o.now}
}

// FindByID implements identity.UserStore.
func (u *Users) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	return u.FindByIDTx(ctx, u.db, id)
}

func (u *Users) FindByIDTx(ctx context.Context, tx bun.IDB, id int64) (*identity.User, error) {
	record := &identity.User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "id", id)
	}
	return record, nil
}

// FindByEmail implements identity.UserFinder.
func (u *Users) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return u.FindByEmailTx(ctx, u.db, email)
}

func (u *Users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*identity.User, error) {
	record := &identity.User{}
	err := tx.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "email", email)
	}
	return record, nil
}

// Create inserts a user record. Signup lives outside this package; Create
// exists for bootstrapping and tests.
func (u *Users) Create(ctx context.Context, user *identity.User) (*identity.User, error) {
	return u.CreateTx(ctx, u.db, user)
}

func (u *Users) CreateTx(ctx context.Context, tx bun.IDB, user *identity.User) (*identity.User, error) {
	if user == nil {
		return nil, errors.New("user must not be nil")
	}
	if user.IdentityProvider == "" {
		user.IdentityProvider = identity.IdentityProviderLocal
	}

	if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Update implements identity.UserStore. The write and the read-back run in
// one transaction so the returned record is the post-write state.
func (u *Users) Update(ctx context.Context, id int64, patch identity.UserPatch) (*identity.User, error) {
	var out *identity.User
	err := u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := u.UpdateTx(ctx, tx, id, patch)
		if err != nil {
			return err
		}
		out = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Users) UpdateTx(ctx context.Context, tx bun.IDB, id int64, patch identity.UserPatch) (*identity.User, error) {
	if patch.IsEmpty() {
		return u.FindByIDTx(ctx, tx, id)
	}

	q := tx.NewUpdate().
		Model((*identity.User)(nil)).
		Where("id = ?", id)

	if patch.EmailVerified != nil {
		q = q.Set("email_verified = ?", *patch.EmailVerified)
	}
	if patch.LastSignedIn != nil {
		q = q.Set("last_signed_in = ?", *patch.LastSignedIn)
	}
	if patch.IdentityProvider != nil {
		q = q.Set("identity_provider = ?", string(*patch.IdentityProvider))
	}
	q = q.Set("updated_at = ?", u.now())

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: id %d", identity.ErrUserNotFound, id)
	}

	u.logger.Debug("updated user %d columns=%v", id, patch.Columns())

	return u.FindByIDTx(ctx, tx, id)
}

func notFound(err error, field string, value any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", identity.ErrUserNotFound, field, value)
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
