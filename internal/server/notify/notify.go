// Package notify renders and delivers transactional emails.
//
// A Mailer renders one of the named HTML templates with a key/value map and
// hands the result to a Sender. Senders deliver through Amazon SES, publish
// to a RabbitMQ exchange for an external mail worker, or just log the
// message during development.
package notify

import (
	"context"
	"errors"
)

// Template names.
const (
	TemplateVerification  = "verification"
	TemplateResetPassword = "resetPassword"
)

// Well-known parameter keys. Templates may use any other key too.
const (
	ParamEmail   = "email"
	ParamSubject = "subject"
	ParamLink    = "link"
	ParamToken   = "token"
)

var ErrMissingRecipient = errors.New("missing recipient")

// Message is a rendered email.
type Message struct {
	Template string `json:"template"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Mailer renders templates and sends the result to params["email"] with
// params["subject"] as subject.
type Mailer struct {
	templates *Templates
	sender    Sender
}

func NewMailer(t *Templates, s Sender) *Mailer {
	return &Mailer{templates: t, sender: s}
}

// Send renders template with params and delivers it.
func (m *Mailer) Send(ctx context.Context, template string, params map[string]string) error {
	to := params[ParamEmail]
	if to == "" {
		return ErrMissingRecipient
	}

	body, err := m.templates.Render(template, params)
	if err != nil {
		return err
	}

	return m.sender.Send(ctx, Message{
		Template: template,
		To:       to,
		Subject:  params[ParamSubject],
		HTML:     body,
	})
}
