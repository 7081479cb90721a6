package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-identity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountModel is the Bun model for linked provider accounts.
type AccountModel struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	UserID            int64     `bun:"user_id,notnull"`
	Type              string    `bun:"type,notnull"`
	Provider          string    `bun:"provider,notnull"`
	ProviderAccountID string    `bun:"provider_account_id,notnull"`
	RefreshToken      string    `bun:"refresh_token"`
	AccessToken       string    `bun:"access_token"`
	ExpiresAt         int64     `bun:"expires_at"`
	TokenType         string    `bun:"token_type"`
	Scope             string    `bun:"scope"`
	IDToken           string    `bun:"id_token"`
	SessionState      string    `bun:"session_state"`
	CreatedAt         time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// accountInput lists every key the accounts table understands. Keys outside
// this set are rejected.
type accountInput struct {
	Type              string `mapstructure:"type"`
	Provider          string `mapstructure:"provider"`
	ProviderAccountID string `mapstructure:"providerAccountId"`
	UserID            any    `mapstructure:"userId"`
	RefreshToken      string `mapstructure:"refresh_token"`
	AccessToken       string `mapstructure:"access_token"`
	ExpiresAt         int64  `mapstructure:"expires_at"`
	TokenType         string `mapstructure:"token_type"`
	Scope             string `mapstructure:"scope"`
	IDToken           string `mapstructure:"id_token"`
	SessionState      string `mapstructure:"session_state"`
	// verification evidence is read by the reconciler, not stored
	EmailVerified      any `mapstructure:"emailVerified"`
	EmailVerifiedSnake any `mapstructure:"email_verified"`
}

func (a accountInput) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required),
		validation.Field(&a.ProviderAccountID, validation.Required),
	)
}

// Accounts implements identity.AccountLinker using Bun.
type Accounts struct {
	db     *bun.DB
	logger identity.Logger
	now    func() time.Time
}

var _ identity.AccountLinker = (*Accounts)(nil)

// NewAccounts creates a new accounts repository.
func NewAccounts(db *bun.DB, opts ...Option) *Accounts {
	o := buildOptions(opts...)
	return &Accounts{db: db, logger: o.logger, now: o.now}
}

// DecodeAccount converts a sanitized account mapping into the stored model.
// Keys without a column return identity.ErrUnmodeledAccountField.
func DecodeAccount(userID int64, account map[string]any) (*AccountModel, error) {
	var in accountInput
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &in,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(account); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}

	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, fmt.Errorf("%w: %s", identity.ErrUnmodeledAccountField, strings.Join(md.Unused, ", "))
	}

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}

	accountType := in.Type
	if accountType == "" {
		accountType = "oauth"
	}

	return &AccountModel{
		ID:                uuid.New(),
		UserID:            userID,
		Type:              accountType,
		Provider:          strings.ToLower(in.Provider),
		ProviderAccountID: in.ProviderAccountID,
		RefreshToken:      in.RefreshToken,
		AccessToken:       in.AccessToken,
		ExpiresAt:         in.ExpiresAt,
		TokenType:         in.TokenType,
		Scope:             in.Scope,
		IDToken:           in.IDToken,
		SessionState:      in.SessionState,
	}, nil
}

// Link implements identity.AccountLinker. Relinking the same provider
// account refreshes the stored tokens.
func (r *Accounts) Link(ctx context.Context, userID int64, account map[string]any) error {
	model, err := DecodeAccount(userID, account)
	if err != nil {
		return err
	}
	return r.Upsert(ctx, model)
}

// Upsert inserts model or updates the row sharing its provider account.
func (r *Accounts) Upsert(ctx context.Context, model *AccountModel) error {
	model.UpdatedAt = r.now()

	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (provider, provider_account_id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("type = EXCLUDED.type").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("expires_at = EXCLUDED.expires_at").
		Set("token_type = EXCLUDED.token_type").
		Set("scope = EXCLUDED.scope").
		Set("id_token = EXCLUDED.id_token").
		Set("session_state = EXCLUDED.session_state").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert %s account: %w", model.Provider, err)
	}

	r.logger.Debug("linked %s account to user %d", model.Provider, model.UserID)
	return nil
}

// FindByProviderAccount returns the row for a provider account.
func (r *Accounts) FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*AccountModel, error) {
	var model AccountModel
	err := r.db.NewSelect().
		Model(&model).
		Where("provider = ? AND provider_account_id = ?", strings.ToLower(provider), providerAccountID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s account %s", ErrAccountNotFound, provider, providerAccountID)
		}
		return nil, err
	}
	return &model, nil
}

// FindByUserID lists the accounts linked to a user.
func (r *Accounts) FindByUserID(ctx context.Context, userID int64) ([]*AccountModel, error) {
	var models []*AccountModel
	err := r.db.NewSelect().
		Model(&models).
		Where("user_id = ?", userID).
		OrderExpr("provider ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if models == nil {
		models = []*AccountModel{}
	}
	return models, nil
}

// Unlink removes the user's account for provider.
func (r *Accounts) Unlink(ctx context.Context, userID int64, provider string) error {
	_, err := r.db.NewDelete().
		Model((*AccountModel)(nil)).
		Where("user_id = ? AND provider = ?", userID, strings.ToLower(provider)).
		Exec(ctx)
	return err
}

// ErrAccountNotFound is returned when no linked account matches.
var ErrAccountNotFound = errors.New("account not found")
