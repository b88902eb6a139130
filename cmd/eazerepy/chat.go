package eazerepy

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/auth"
	"github.com/eazerepy/eazerepy/internal/chat"
	"github.com/eazerepy/eazerepy/internal/tui"
)

// ChatCmd opens a conversation with an agent.
type ChatCmd struct {
	Query string   `short:"q" long:"query" description:"send one message and print the reply"`
	Plain bool     `long:"plain" description:"line mode instead of the full-screen view"`
	Args  AgentArg `positional-args:"yes" required:"yes"`
}

func (c *ChatCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	opts, err := app.chatOptions()
	if err != nil {
		return err
	}
	session := chat.New(app.Client, c.Args.ID, opts...)
	if c.Query == "" && !c.Plain && app.Prompt.Interactive() {
		return c.screen(ctx, app, session)
	}
	if err := session.Open(ctx); err != nil {
		if signErr := app.signedIn(); signErr != nil {
			return signErr
		}
		return errors.New(chat.Message(err))
	}
	if err := app.signedIn(); err != nil {
		return err
	}
	if err := session.Err(); err != nil {
		app.printf("warning: %s\n", chat.Message(err))
	}
	if c.Query != "" {
		return c.turn(ctx, app, session, c.Query)
	}
	return c.repl(ctx, app, session)
}

// screen runs the full-screen view; a login notice raised meanwhile is printed after it exits.
func (c *ChatCmd) screen(ctx context.Context, app *App, session *chat.Session) error {
	app.notice.hold()
	err := tui.Run(ctx, session, tui.WithSignedIn(app.Session.Authenticated))
	app.notice.release()
	if errors.Is(err, tui.ErrSignedOut) {
		return app.signedIn()
	}
	return err
}

// repl reads one message per line until EOF or /quit. It stops once the session is signed out.
func (c *ChatCmd) repl(ctx context.Context, app *App, session *chat.Session) error {
	if a := session.Agent(); a != nil {
		app.printf("Chatting with %s. Type /quit to exit.\n", a.AgentName)
	}
	for _, msg := range session.Transcript() {
		printMessage(app, msg)
	}
	for {
		line, err := app.Prompt.Line("> ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}
		if err := c.turn(ctx, app, session, line); err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				return err
			}
			app.printf("%s\n", err)
		}
	}
}

func (c *ChatCmd) turn(ctx context.Context, app *App, session *chat.Session, input string) error {
	before := len(session.Transcript())
	sent, err := session.Send(ctx, input)
	if signErr := app.signedIn(); signErr != nil {
		return signErr
	}
	if err != nil {
		return errors.New(chat.Message(err))
	}
	if !sent {
		return errors.New("message not sent: the conversation is unavailable")
	}
	transcript := session.Transcript()
	for _, msg := range transcript[before:] {
		if msg.Role == sdk.RoleAssistant {
			printMessage(app, msg)
		}
	}
	return nil
}

func printMessage(app *App, msg sdk.Message) {
	r := chat.Render(msg)
	app.printf("[%s] %s\n", r.Heading, r.Body)
}
