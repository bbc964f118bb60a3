// Package credentials implements the credential entity and its lifecycle:
// creation in the unverified state, verification, password replacement and
// single-use reset tokens. Persistence goes through a record.Store.
package credentials

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/record"
)

// Stored attribute names.
const (
	FieldID                    = "id"
	FieldEmail                 = "email"
	FieldPasswordSalt          = "passwordSalt"
	FieldPasswordHash          = "passwordHash"
	FieldPermissions           = "permissions"
	FieldVerified              = "verified"
	FieldVerificationToken     = "verificationToken"
	FieldResetToken            = "resetToken"
	FieldResetTokenExpiresAt   = "resetTokenExpiresAt"
	FieldRequirePasswordChange = "requirePasswordChange"
)

// Schema is the storage layout of the Credentials table.
var Schema = record.Schema{
	Name:       "Credentials",
	PrimaryKey: FieldID,
	Fields: []string{
		FieldEmail,
		FieldPasswordSalt,
		FieldPasswordHash,
		FieldPermissions,
		FieldVerified,
		FieldVerificationToken,
		FieldResetToken,
		FieldResetTokenExpiresAt,
		FieldRequirePasswordChange,
	},
}

// Credential is one registered email address. Empty token fields mean the
// token is absent.
type Credential struct {
	ID                    string
	Email                 string
	PasswordSalt          string
	PasswordHash          string
	Permissions           string
	Verified              bool
	VerificationToken     string
	ResetToken            string
	ResetTokenExpiresAt   time.Time
	RequirePasswordChange bool
}

// PasswordMatches derives a hash from password with the stored salt and
// compares it in constant time.
func (c *Credential) PasswordMatches(password string) (bool, error) {
	_, hash, err := cryptox.DeriveHash(password, c.PasswordSalt)
	if err != nil {
		return false, err
	}
	return cryptox.Equal(hash, c.PasswordHash), nil
}

func (c *Credential) VerificationTokenMatches(token string) bool {
	if c.VerificationToken == "" || token == "" {
		return false
	}
	return cryptox.Equal(token, c.VerificationToken)
}

// ResetTokenMatches reports whether token is the current reset token and has
// not expired at now. A zero expiry never expires.
func (c *Credential) ResetTokenMatches(token string, now time.Time) bool {
	if c.ResetToken == "" || token == "" {
		return false
	}
	if !cryptox.Equal(token, c.ResetToken) {
		return false
	}
	return c.ResetTokenExpiresAt.IsZero() || now.Before(c.ResetTokenExpiresAt)
}

func (c *Credential) fields() record.Fields {
	f := record.Fields{
		FieldID:                    c.ID,
		FieldEmail:                 c.Email,
		FieldPasswordSalt:          c.PasswordSalt,
		FieldPasswordHash:          c.PasswordHash,
		FieldVerified:              c.Verified,
		FieldRequirePasswordChange: c.RequirePasswordChange,
	}
	if c.Permissions != "" {
		f[FieldPermissions] = c.Permissions
	}
	if c.VerificationToken != "" {
		f[FieldVerificationToken] = c.VerificationToken
	}
	if c.ResetToken != "" {
		f[FieldResetToken] = c.ResetToken
		f[FieldResetTokenExpiresAt] = c.ResetTokenExpiresAt.Unix()
	}
	return f
}

func fromFields(f record.Fields) (*Credential, error) {
	c := &Credential{}
	var err error

	str := func(name string) string {
		if err != nil {
			return ""
		}
		v, ok := f[name]
		if !ok {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			err = fmt.Errorf("field %s: unexpected type %T", name, v)
		}
		return s
	}
	boolean := func(name string) bool {
		if err != nil {
			return false
		}
		v, ok := f[name]
		if !ok {
			return false
		}
		b, ok := v.(bool)
		if !ok {
			err = fmt.Errorf("field %s: unexpected type %T", name, v)
		}
		return b
	}

	c.ID = str(FieldID)
	c.Email = str(FieldEmail)
	c.PasswordSalt = str(FieldPasswordSalt)
	c.PasswordHash = str(FieldPasswordHash)
	c.Permissions = str(FieldPermissions)
	c.Verified = boolean(FieldVerified)
	c.VerificationToken = str(FieldVerificationToken)
	c.ResetToken = str(FieldResetToken)
	c.RequirePasswordChange = boolean(FieldRequirePasswordChange)

	if v, ok := f[FieldResetTokenExpiresAt]; ok && err == nil {
		switch n := v.(type) {
		case int64:
			c.ResetTokenExpiresAt = time.Unix(n, 0)
		case float64:
			c.ResetTokenExpiresAt = time.Unix(int64(n), 0)
		default:
			err = fmt.Errorf("field %s: unexpected type %T", FieldResetTokenExpiresAt, v)
		}
	}

	if err != nil {
		return nil, err
	}
	return c, nil
}
