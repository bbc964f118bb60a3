// Package services contains server-side business logic. CredentialService
// implements the credential lifecycle operations on top of the credentials
// repository, an email Mailer and an identity token issuer.
package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
)

// CredentialStore is the subset of *credentials.Repository the service uses.
type CredentialStore interface {
	Exists(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*credentials.Credential, error)
	Create(ctx context.Context, c *credentials.Credential) error
	SetPassword(ctx context.Context, c *credentials.Credential, password string) error
	ResetPassword(ctx context.Context, c *credentials.Credential, password string) error
	SetVerified(ctx context.Context, c *credentials.Credential) error
	SetResetToken(ctx context.Context, c *credentials.Credential) error
	AuthToken(ctx context.Context, c *credentials.Credential) (string, error)
	Now() time.Time
}

// Mailer renders and sends a named email template.
type Mailer interface {
	Send(ctx context.Context, template string, params map[string]string) error
}

// Links holds the values that end up in outgoing emails.
type Links struct {
	AppName           string
	VerificationLink  string
	ResetPasswordLink string
}

type CredentialService struct {
	store  CredentialStore
	mailer Mailer
	links  Links
	logger logging.Logger
}

func NewCredentialService(store CredentialStore, mailer Mailer, links Links, l logging.Logger) *CredentialService {
	return &CredentialService{
		store:  store,
		mailer: mailer,
		links:  links,
		logger: l.With("module", "credential_service"),
	}
}

// Register creates unverified credentials and emails a verification link.
func (s *CredentialService) Register(ctx context.Context, req RegisterRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	exists, err := s.store.Exists(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}
	if exists {
		return rejected(common.KindConflict, "user already exists: "+req.Email), nil
	}

	c, err := credentials.New(req.Email, req.Password)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.Create(ctx, c); err != nil {
		return Result{}, err
	}

	s.logger.Info(ctx, "credentials registered", "email", c.Email)

	if err := s.sendVerificationEmail(ctx, c.Email, c.VerificationToken); err != nil {
		return Result{}, err
	}

	return created("created: "+c.Email, map[string]any{"email": c.Email}), nil
}

// Authenticate checks the password and returns an identity token.
func (s *CredentialService) Authenticate(ctx context.Context, req AuthenticateRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	c, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}

	match, err := c.PasswordMatches(req.Password)
	if err != nil {
		return Result{}, err
	}
	if !match {
		s.logger.Warn(ctx, "authentication rejected", "email", c.Email)
		return rejected(common.KindRejected, "incorrect password"), nil
	}

	token, err := s.store.AuthToken(ctx, c)
	if err != nil {
		return Result{}, err
	}

	return ok("authenticated", map[string]any{"token": token}), nil
}

// Verify consumes the verification token and marks the credentials verified.
func (s *CredentialService) Verify(ctx context.Context, req VerifyRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	c, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}

	if !c.VerificationTokenMatches(req.Token) {
		return rejected(common.KindRejected, "invalid token"), nil
	}

	if err := s.store.SetVerified(ctx, c); err != nil {
		return Result{}, err
	}

	s.logger.Info(ctx, "email verified", "email", c.Email)
	return ok("verified", map[string]any{"email": c.Email}), nil
}

// ForgotPassword issues a reset token and emails a reset link.
func (s *CredentialService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	c, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}

	if err := s.store.SetResetToken(ctx, c); err != nil {
		return Result{}, err
	}

	if err := s.sendResetEmail(ctx, c.Email, c.ResetToken); err != nil {
		return Result{}, err
	}

	s.logger.Info(ctx, "password reset requested", "email", c.Email)
	return ok("reset email sent", nil), nil
}

// ResetPassword replaces the password if the reset token is current.
func (s *CredentialService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	c, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}

	if !c.ResetTokenMatches(req.Token, s.store.Now()) {
		return rejected(common.KindRejected, "invalid token"), nil
	}

	if err := s.store.ResetPassword(ctx, c, req.Password); err != nil {
		return Result{}, err
	}

	s.logger.Info(ctx, "password reset", "email", c.Email)
	return ok("password updated", nil), nil
}

// ChangePassword replaces the password after checking the current one.
func (s *CredentialService) ChangePassword(ctx context.Context, req ChangePasswordRequest) (Result, error) {
	req.Email = credentials.NormalizeEmail(req.Email)
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	c, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		return Result{}, err
	}

	match, err := c.PasswordMatches(req.CurrentPassword)
	if err != nil {
		return Result{}, err
	}
	if !match {
		s.logger.Warn(ctx, "password change rejected", "email", c.Email)
		return rejected(common.KindRejected, "incorrect password"), nil
	}

	if err := s.store.SetPassword(ctx, c, req.NewPassword); err != nil {
		return Result{}, err
	}

	s.logger.Info(ctx, "password changed", "email", c.Email)
	return ok("password updated", nil), nil
}

func (s *CredentialService) sendVerificationEmail(ctx context.Context, email, token string) error {
	return s.sendEmail(ctx, notify.TemplateVerification, map[string]string{
		notify.ParamEmail:   email,
		notify.ParamToken:   token,
		notify.ParamSubject: "[" + s.links.AppName + "] Please verify this email address",
		notify.ParamLink:    BuildLink(s.links.VerificationLink, email, token),
	})
}

func (s *CredentialService) sendResetEmail(ctx context.Context, email, token string) error {
	return s.sendEmail(ctx, notify.TemplateResetPassword, map[string]string{
		notify.ParamEmail:   email,
		notify.ParamToken:   token,
		notify.ParamSubject: "[" + s.links.AppName + "] Reset your password",
		notify.ParamLink:    BuildLink(s.links.ResetPasswordLink, email, token),
	})
}

func (s *CredentialService) sendEmail(ctx context.Context, template string, params map[string]string) error {
	if err := s.mailer.Send(ctx, template, params); err != nil {
		s.logger.Error(ctx, "email delivery failed", "template", template, "email", params[notify.ParamEmail], "error", err)
		return common.Notification(err)
	}
	return nil
}

// BuildLink appends the email and token query parameters to base.
func BuildLink(base, email, token string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "email=" + url.QueryEscape(email) + "&token=" + url.QueryEscape(token)
}
