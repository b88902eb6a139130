package eazerepy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
	"github.com/eazerepy/eazerepy/internal/draft"
)

// AgentArg is the positional agent id shared by agent commands.
type AgentArg struct {
	ID int `positional-arg-name:"agent-id" required:"yes"`
}

// ListCmd prints the user's agents.
type ListCmd struct{}

func (c *ListCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	agents, err := app.directory().List(ctx)
	if err != nil {
		return errors.New(agent.Message(err))
	}
	if len(agents) == 0 {
		app.printf("You have no agents yet. Create one with 'eazerepy create'.\n")
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "TRAITS", "CREATED")
	for _, a := range agents {
		created := ""
		if a.CreatedAt != nil && !a.CreatedAt.IsZero() {
			created = a.CreatedAt.Local().Format("2006-01-02")
		}
		t.Row(strconv.Itoa(a.ID), a.AgentName, strings.Join(a.Traits, ", "), created)
	}
	app.printf("%s\n", t.Render())
	return nil
}

// ShowCmd prints one agent with masked credentials.
type ShowCmd struct {
	Args AgentArg `positional-args:"yes" required:"yes"`
}

func (c *ShowCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	a, err := app.directory().Get(ctx, c.Args.ID)
	if err != nil {
		return errors.New(agent.Message(err))
	}
	app.printf("%s", describe(a))
	return nil
}

func describe(a *sdk.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (#%d)\n", a.AgentName, a.ID)
	if a.AgentTwitter != "" {
		fmt.Fprintf(&b, "Twitter: %s\n", a.AgentTwitter)
	}
	if len(a.Traits) > 0 {
		fmt.Fprintf(&b, "Traits: %s\n", strings.Join(a.Traits, ", "))
	}
	if len(a.AgentBio) > 0 {
		b.WriteString("Bio:\n")
		for i, s := range a.AgentBio {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}
	for _, group := range sdk.CredentialGroups() {
		var lines []string
		for _, key := range sdk.CredentialKeys() {
			if key.Group != group {
				continue
			}
			if value := a.Credentials.Get(key.Field); value != "" {
				lines = append(lines, fmt.Sprintf("  %s: %s", key.Label, mask(value)))
			}
		}
		if len(lines) > 0 {
			fmt.Fprintf(&b, "%s:\n%s\n", group, strings.Join(lines, "\n"))
		}
	}
	return b.String()
}

// mask hides all but the last four characters.
func mask(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	stars := len(value) - 4
	if stars > 8 {
		stars = 8
	}
	return strings.Repeat("*", stars) + value[len(value)-4:]
}

// EditCmd applies profile and credential changes to an agent.
type EditCmd struct {
	Name        *string  `long:"name" description:"new name"`
	Twitter     *string  `long:"twitter" description:"new Twitter handle"`
	AddBio      []string `long:"add-bio" description:"append a bio sentence"`
	RemoveBio   []int    `long:"remove-bio" description:"remove the bio sentence at 1-based position"`
	AddTrait    []string `long:"add-trait" description:"add a trait"`
	RemoveTrait []string `long:"remove-trait" description:"remove a trait"`
	Set         []string `long:"set" description:"set a credential, KEY=value (empty value clears it)"`
	Args        AgentArg `positional-args:"yes" required:"yes"`
}

func (c *EditCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	dir := app.directory()
	current, err := dir.Get(ctx, c.Args.ID)
	if err != nil {
		return errors.New(agent.Message(err))
	}
	edit := agent.EditOf(current)
	if err := c.apply(&edit); err != nil {
		return err
	}
	updated, err := dir.Update(ctx, c.Args.ID, edit)
	if err != nil {
		return errors.New(agent.Message(err))
	}
	app.printf("Agent updated successfully!\n%s", describe(updated))
	return nil
}

func (c *EditCmd) apply(edit *agent.Edit) error {
	if c.Name != nil {
		edit.Name = strings.TrimSpace(*c.Name)
	}
	if c.Twitter != nil {
		edit.Twitter = strings.TrimSpace(*c.Twitter)
	}
	// remove from the highest position so earlier positions stay valid
	seen := map[int]bool{}
	var positions []int
	for _, pos := range c.RemoveBio {
		if !seen[pos] {
			seen[pos] = true
			positions = append(positions, pos)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))
	for _, pos := range positions {
		if !edit.RemoveBio(pos - 1) {
			return fmt.Errorf("no bio sentence at position %d", pos)
		}
	}
	for _, s := range c.AddBio {
		edit.AddBio(s)
	}
	for _, t := range c.RemoveTrait {
		edit.RemoveTrait(strings.TrimSpace(t))
	}
	for _, t := range c.AddTrait {
		edit.AddTrait(t)
	}
	creds, err := draft.ParseAssignments(c.Set)
	if err != nil {
		return err
	}
	if edit.Credentials == nil {
		edit.Credentials = sdk.Credentials{}
	}
	for field, value := range creds {
		edit.Credentials[field] = value
	}
	return nil
}

// DeleteCmd removes an agent after confirmation.
type DeleteCmd struct {
	Yes  bool     `short:"y" long:"yes" description:"skip the confirmation prompt"`
	Args AgentArg `positional-args:"yes" required:"yes"`
}

func (c *DeleteCmd) Execute(_ []string) error {
	ctx := context.Background()
	app, err := protected(ctx)
	if err != nil {
		return err
	}
	var confirmer agent.Confirmer = app.Prompt
	if c.Yes {
		confirmer = agent.ConfirmFunc(func(string) (bool, error) { return true, nil })
	}
	dir := agent.NewDirectory(app.Client, confirmer, app.Logger)
	deleted, err := dir.Delete(ctx, c.Args.ID)
	if err != nil {
		return errors.New(agent.Message(err))
	}
	if !deleted {
		app.printf("Deletion cancelled.\n")
		return nil
	}
	app.printf("Agent %d deleted. %d agent(s) remaining.\n", c.Args.ID, len(dir.Agents()))
	return nil
}
