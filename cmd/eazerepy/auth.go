package eazerepy

import (
	"context"
	"errors"

	"github.com/eazerepy/eazerepy/internal/auth"
)

// LoginCmd exchanges credentials for a session token.
type LoginCmd struct {
	Username string `short:"u" long:"username" description:"username (prompted when omitted)"`
	Password string `short:"p" long:"password" description:"password (prompted when omitted)"`
}

func (c *LoginCmd) Execute(_ []string) error {
	app, err := application()
	if err != nil {
		return err
	}
	return authenticate(app, c.Username, c.Password, false)
}

// RegisterCmd creates an account and logs in.
type RegisterCmd struct {
	Username string `short:"u" long:"username" description:"username (prompted when omitted)"`
	Password string `short:"p" long:"password" description:"password (prompted when omitted)"`
}

func (c *RegisterCmd) Execute(_ []string) error {
	app, err := application()
	if err != nil {
		return err
	}
	return authenticate(app, c.Username, c.Password, true)
}

func authenticate(app *App, username, password string, register bool) error {
	var err error
	if username == "" {
		if username, err = app.Prompt.Line("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = app.Prompt.Password("Password: "); err != nil {
			return err
		}
	}
	ctx := context.Background()
	if register {
		err = app.Session.Register(ctx, username, password)
	} else {
		err = app.Session.Login(ctx, username, password)
	}
	if err != nil {
		if msg := app.Session.Err(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	if register {
		app.printf("Account created. Logged in as %s.\n", username)
	} else {
		app.printf("Logged in as %s.\n", username)
	}
	return nil
}

// LogoutCmd clears the stored session.
type LogoutCmd struct{}

func (c *LogoutCmd) Execute(_ []string) error {
	app, err := application()
	if err != nil {
		return err
	}
	return app.Session.Logout(context.Background())
}

// StatusCmd prints whether the stored session is valid.
type StatusCmd struct{}

func (c *StatusCmd) Execute(_ []string) error {
	app, err := application()
	if err != nil {
		return err
	}
	if err := app.Session.Restore(context.Background()); err != nil {
		app.printf("%s\n", app.Session.Err())
		return err
	}
	switch app.Session.Status() {
	case auth.StatusAuthenticated:
		name := "unknown user"
		if user := app.Session.User(); user != nil && user.Username != "" {
			name = user.Username
		}
		app.printf("Logged in as %s (%s).\n", name, app.Client.BaseURL())
	default:
		app.printf("Not logged in (%s).\n", app.Client.BaseURL())
	}
	return nil
}

