package eazerepy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
	"github.com/eazerepy/eazerepy/internal/draft"
)

// ProfileFlags collects the profile step from flags; missing values are prompted on a terminal.
type ProfileFlags struct {
	Name    string   `short:"n" long:"name" description:"agent name"`
	Bio     []string `short:"b" long:"bio" description:"bio sentence (repeatable)"`
	Twitter string   `long:"twitter" description:"Twitter handle"`
	Traits  []string `short:"t" long:"trait" description:"trait (repeatable)"`
}

func (f ProfileFlags) empty() bool {
	return f.Name == "" && len(f.Bio) == 0 && f.Twitter == "" && len(f.Traits) == 0
}

func (f ProfileFlags) profile(app *App) (agent.Profile, error) {
	p := agent.Profile{Name: strings.TrimSpace(f.Name), Twitter: strings.TrimSpace(f.Twitter)}
	for _, s := range f.Bio {
		p.AddBio(s)
	}
	for _, t := range f.Traits {
		p.AddTrait(t)
	}
	if !f.empty() || !app.Prompt.Interactive() {
		return p, nil
	}
	var err error
	if p.Name, err = app.Prompt.Line("Agent name: "); err != nil {
		return p, err
	}
	bio, err := app.Prompt.Lines("Bio sentences (blank line to finish):")
	if err != nil {
		return p, err
	}
	for _, s := range bio {
		p.AddBio(s)
	}
	if p.Twitter, err = app.Prompt.Line("Twitter handle: "); err != nil {
		return p, err
	}
	traits, err := app.Prompt.Lines("Traits, e.g. " + strings.Join(agent.TraitSuggestions, ", ") + " (blank line to finish):")
	if err != nil {
		return p, err
	}
	for _, t := range traits {
		p.AddTrait(t)
	}
	return p, nil
}

// CredentialFlags collects the credential step.
type CredentialFlags struct {
	Set  []string `short:"s" long:"set" description:"credential KEY=value (repeatable)"`
	Skip bool     `long:"skip-credentials" description:"do not prompt for credentials"`
}

func (f CredentialFlags) credentials(app *App) (sdk.Credentials, error) {
	creds, err := draft.ParseAssignments(f.Set)
	if err != nil {
		return nil, err
	}
	if len(f.Set) > 0 || f.Skip || !app.Prompt.Interactive() {
		return creds, nil
	}
	app.printf("Agent configuration: leave a value blank to skip it.\n")
	for _, group := range sdk.CredentialGroups() {
		app.printf("%s\n", group)
		for _, key := range sdk.CredentialKeys() {
			if key.Group != group {
				continue
			}
			value, err := app.Prompt.Password(fmt.Sprintf("  %s (%s): ", key.Label, key.Name))
			if err != nil {
				return nil, err
			}
			if value != "" {
				creds[key.Field] = value
			}
		}
	}
	return creds, nil
}

// CreateCmd runs both creation steps and creates the agent.
type CreateCmd struct {
	ProfileFlags
	CredentialFlags
}

func (c *CreateCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	flow := draft.NewFlow(draft.NewMemoryStore())
	profile, err := c.profile(app)
	if err != nil {
		return err
	}
	if err := flow.Begin(ctx, profile); err != nil {
		return err
	}
	creds, err := c.credentials(app)
	if err != nil {
		return err
	}
	if err := flow.Configure(ctx, creds); err != nil {
		return err
	}
	return submit(ctx, app, flow)
}

// DraftCmd saves the profile step for a later configure.
type DraftCmd struct {
	ProfileFlags
}

func (c *DraftCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	profile, err := c.profile(app)
	if err != nil {
		return err
	}
	if err := draft.NewFlow(app.Drafts).Begin(ctx, profile); err != nil {
		return err
	}
	app.printf("Draft saved. Run 'eazerepy configure' to add credentials and create the agent.\n")
	return nil
}

// ConfigureCmd completes a saved draft with credentials and creates the agent.
type ConfigureCmd struct {
	CredentialFlags
}

func (c *ConfigureCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	flow := draft.NewFlow(app.Drafts)
	if _, ok, err := flow.Profile(ctx); err != nil {
		return err
	} else if !ok {
		app.printf("No draft found; using default values.\n")
	}
	creds, err := c.credentials(app)
	if err != nil {
		return err
	}
	if err := flow.Configure(ctx, creds); err != nil {
		return err
	}
	return submit(ctx, app, flow)
}

func submit(ctx context.Context, app *App, flow *draft.Flow) error {
	created, err := flow.Submit(ctx, app.Client)
	if err != nil {
		if errors.Is(err, draft.ErrCreate) {
			return errors.New("Failed to create agent. Please try again later.")
		}
		return err
	}
	app.printf("Agent %q created (#%d). Start chatting with 'eazerepy chat %d'.\n", created.AgentName, created.ID, created.ID)
	return nil
}
