package credentials

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/record"
)

// TokenIssuer mints identity bearer tokens for a subject.
type TokenIssuer interface {
	Issue(ctx context.Context, subject string) (string, error)
}

// Repository owns every mutation of Credential records.
type Repository struct {
	store    *record.Store
	issuer   TokenIssuer
	resetTTL time.Duration
	now      func() time.Time
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithResetTTL sets how long reset tokens stay valid. Zero disables expiry.
func WithResetTTL(d time.Duration) Option {
	return func(r *Repository) { r.resetTTL = d }
}

const DefaultResetTTL = 30 * time.Minute

func NewRepository(b record.Backend, tablePrefix string, issuer TokenIssuer, opts ...Option) *Repository {
	r := &Repository{
		store:    record.NewStore(b, tablePrefix, Schema),
		issuer:   issuer,
		resetTTL: DefaultResetTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Exists reports whether a credential is registered for email.
func (r *Repository) Exists(ctx context.Context, email string) (bool, error) {
	_, found, err := r.store.FindBy(ctx, FieldEmail, NormalizeEmail(email))
	if err != nil {
		return false, err
	}
	return found, nil
}

// FindByEmail loads the credential for email or returns a NotFound error.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	f, found, err := r.store.FindBy(ctx, FieldEmail, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.NotFound("credentials")
	}

	c, err := fromFields(f)
	if err != nil {
		return nil, common.Storage(err)
	}
	return c, nil
}

// New builds an unverified credential with a fresh id, salt, hash and
// verification token. Nothing is persisted.
func New(email, password string) (*Credential, error) {
	id, err := cryptox.NewID()
	if err != nil {
		return nil, err
	}
	token, err := cryptox.NewToken()
	if err != nil {
		return nil, err
	}
	salt, hash, err := cryptox.DeriveHash(password, "")
	if err != nil {
		return nil, err
	}

	return &Credential{
		ID:                id,
		Email:             NormalizeEmail(email),
		PasswordSalt:      salt,
		PasswordHash:      hash,
		Verified:          false,
		VerificationToken: token,
	}, nil
}

// Create persists c. Uniqueness of the email is the caller's concern.
func (r *Repository) Create(ctx context.Context, c *Credential) error {
	return r.store.Insert(ctx, c.fields())
}

// SetPassword replaces salt and hash in one update.
func (r *Repository) SetPassword(ctx context.Context, c *Credential, password string) error {
	salt, hash, err := cryptox.DeriveHash(password, "")
	if err != nil {
		return err
	}

	err = r.store.UpdateFields(ctx, c.ID, record.Fields{
		FieldPasswordSalt: salt,
		FieldPasswordHash: hash,
	})
	if err != nil {
		return err
	}

	c.PasswordSalt, c.PasswordHash = salt, hash
	return nil
}

// ResetPassword replaces the password and consumes the reset token in the
// same update.
func (r *Repository) ResetPassword(ctx context.Context, c *Credential, password string) error {
	salt, hash, err := cryptox.DeriveHash(password, "")
	if err != nil {
		return err
	}

	err = r.store.UpdateFields(ctx, c.ID, record.Fields{
		FieldPasswordSalt:        salt,
		FieldPasswordHash:        hash,
		FieldResetToken:          nil,
		FieldResetTokenExpiresAt: nil,
	})
	if err != nil {
		return err
	}

	c.PasswordSalt, c.PasswordHash = salt, hash
	c.ResetToken, c.ResetTokenExpiresAt = "", time.Time{}
	return nil
}

// SetVerified marks c verified and removes its verification token.
func (r *Repository) SetVerified(ctx context.Context, c *Credential) error {
	err := r.store.UpdateFields(ctx, c.ID, record.Fields{
		FieldVerified:          true,
		FieldVerificationToken: nil,
	})
	if err != nil {
		return err
	}

	c.Verified, c.VerificationToken = true, ""
	return nil
}

// SetResetToken issues a fresh reset token, replacing any earlier one.
func (r *Repository) SetResetToken(ctx context.Context, c *Credential) error {
	token, err := cryptox.NewToken()
	if err != nil {
		return err
	}

	changes := record.Fields{FieldResetToken: token, FieldResetTokenExpiresAt: nil}
	var expires time.Time
	if r.resetTTL > 0 {
		expires = r.now().Add(r.resetTTL)
		changes[FieldResetTokenExpiresAt] = expires.Unix()
	}

	if err := r.store.UpdateFields(ctx, c.ID, changes); err != nil {
		return err
	}

	c.ResetToken, c.ResetTokenExpiresAt = token, expires
	return nil
}

// Now returns the repository clock reading.
func (r *Repository) Now() time.Time { return r.now() }

// AuthToken asks the identity issuer for a bearer token with the email as
// subject.
func (r *Repository) AuthToken(ctx context.Context, c *Credential) (string, error) {
	token, err := r.issuer.Issue(ctx, c.Email)
	if err != nil {
		return "", common.TokenIssuance(err)
	}
	return token, nil
}
