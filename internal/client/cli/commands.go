package cli

import (
	"context"
)

// command collects its input interactively and returns the operation name
// and payload to send.
type command struct {
	usage string
	build func(a *App) (string, map[string]any, error)
}

var commands = map[string]command{
	"register": {"create credentials and receive a verification email", (*App).register},
	"login":    {"authenticate and print an identity token", (*App).login},
	"verify":   {"confirm an email address with the emailed token", (*App).verify},
	"forgot":   {"request a password reset email", (*App).forgot},
	"reset":    {"set a new password with the emailed reset token", (*App).reset},
	"change":   {"change the password using the current one", (*App).change},
}

var commandOrder = []string{"register", "login", "verify", "forgot", "reset", "change"}

func (a *App) email() (string, error) {
	return GetSimpleText(a.reader, "Enter email", a.out)
}

func (a *App) register() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return "", nil, err
	}
	return "register", map[string]any{"email": email, "password": password}, nil
}

func (a *App) login() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		return "", nil, err
	}
	return "authenticate", map[string]any{"email": email, "password": password}, nil
}

func (a *App) verify() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	token, err := GetSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return "", nil, err
	}
	return "verify", map[string]any{"email": email, "token": token}, nil
}

func (a *App) forgot() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	return "forgotPassword", map[string]any{"email": email}, nil
}

func (a *App) reset() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	token, err := GetSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword("Enter new password", a.out)
	if err != nil {
		return "", nil, err
	}
	return "resetPassword", map[string]any{"email": email, "token": token, "password": password}, nil
}

func (a *App) change() (string, map[string]any, error) {
	email, err := a.email()
	if err != nil {
		return "", nil, err
	}
	current, err := GetPassword("Enter current password", a.out)
	if err != nil {
		return "", nil, err
	}
	next, err := GetPassword("Enter new password", a.out)
	if err != nil {
		return "", nil, err
	}
	return "changePassword", map[string]any{"email": email, "currentPassword": current, "newPassword": next}, nil
}

// runCommand prompts for input, invokes the operation and prints the result.
func (a *App) runCommand(ctx context.Context, name string) error {
	cmd, ok := commands[name]
	if !ok {
		a.usage()
		return ErrUnknownCommand
	}

	op, payload, err := cmd.build(a)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	resp, err := a.invoker.Invoke(ctx, op, payload)
	if err != nil {
		return err
	}

	a.printResponse(resp.Success, resp.Status, resp.Message, resp.Data)
	if !resp.Success {
		return ErrRejected
	}
	return nil
}
