package eazerepy

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/agent"
	"github.com/eazerepy/eazerepy/internal/auth"
	"github.com/eazerepy/eazerepy/internal/chat"
	"github.com/eazerepy/eazerepy/internal/config"
	"github.com/eazerepy/eazerepy/internal/draft"
	elog "github.com/eazerepy/eazerepy/internal/log"
)

// App wires the components shared by every command.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Session *auth.Session
	Client  *sdk.Client
	Prompt  *Prompter
	Out     io.Writer
	// Drafts backs the two-command creation flow.
	Drafts draft.Store

	notice *loginNotice
}

var (
	cfgMu   sync.RWMutex
	cfgPath string
	verbose bool

	appMu   sync.Mutex
	current *App
)

// called from CLI before flag parsing
func setConfigPath(p string) {
	cfgMu.Lock()
	cfgPath = p
	cfgMu.Unlock()
}

func setVerbose(v bool) {
	cfgMu.Lock()
	verbose = v
	cfgMu.Unlock()
}

// application initialises the process-wide App only once.
func application() (*App, error) {
	appMu.Lock()
	defer appMu.Unlock()
	if current != nil {
		return current, nil
	}
	cfgMu.RLock()
	path, debug := cfgPath, verbose
	cfgMu.RUnlock()

	ctx := context.Background()
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	logger, err := elog.New(elog.Options{Level: cfg.Log.Level, File: cfg.LogFile(), Verbose: debug})
	if err != nil {
		return nil, err
	}
	store, err := auth.NewScyStore(cfg.TokenFile())
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}
	app, err := newApp(cfg, logger, store, os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	app.Drafts = draft.NewFileStore(cfg.DraftsURL())
	current = app
	return current, nil
}

// newApp builds the session and gateway over store. The gateway reads the token from the
// session and reports 401 responses back to it.
func newApp(cfg *config.Config, logger *zap.Logger, store auth.TokenStore, in io.Reader, out io.Writer) (*App, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	notice := &loginNotice{out: out}
	session := auth.NewSession(store,
		auth.WithNavigator(notice),
		auth.WithLogger(logger),
	)
	opts := []sdk.Option{
		sdk.WithTokenProvider(session.Token),
		sdk.WithUnauthorizedHandler(session.HandleUnauthorized),
		sdk.WithLogger(logger),
		sdk.WithTimeout(timeout),
		sdk.WithPaths(sdk.Paths{Login: cfg.Auth.LoginPath, Register: cfg.Auth.RegisterPath, Probe: cfg.Auth.ProbePath}),
	}
	if cfg.RequestID {
		opts = append(opts, sdk.WithRequestID())
	}
	client := sdk.New(cfg.APIURL, opts...)
	session.Attach(client)
	return &App{
		Config:  cfg,
		Logger:  logger,
		Session: session,
		Client:  client,
		Prompt:  NewPrompter(in, out),
		Out:     out,
		Drafts:  draft.NewMemoryStore(),
		notice:  notice,
	}, nil
}

func setApp(app *App) {
	appMu.Lock()
	current = app
	appMu.Unlock()
}

func closeApp() {
	appMu.Lock()
	defer appMu.Unlock()
	if current != nil && current.Logger != nil {
		_ = current.Logger.Sync()
	}
}

// protected returns the App once the stored session resolved to authenticated.
func protected(ctx context.Context) (*App, error) {
	app, err := application()
	if err != nil {
		return nil, err
	}
	if err := app.Session.Restore(ctx); err != nil {
		app.Logger.Warn("session restore failed", zap.Error(err))
	}
	if err := auth.Require(app.Session); err != nil {
		if msg := app.Session.Err(); msg != "" {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("%w: run 'eazerepy login' first", err)
	}
	return app, nil
}

// signedIn fails once the session was forced out, for example by a 401 mid-command.
func (a *App) signedIn() error {
	if a.Session.Authenticated() {
		return nil
	}
	return fmt.Errorf("%w: run 'eazerepy login' first", auth.ErrNotAuthenticated)
}

func (a *App) directory() *agent.Directory {
	return agent.NewDirectory(a.Client, a.Prompt, a.Logger)
}

func (a *App) chatOptions() ([]chat.Option, error) {
	selector, err := chat.SelectorByName(a.Config.Conversation)
	if err != nil {
		return nil, err
	}
	opts := []chat.Option{chat.WithSelector(selector), chat.WithLogger(a.Logger)}
	if a.Config.Inference == config.InferenceLegacy {
		opts = append(opts, chat.WithTurner(chat.LegacyTurner{Sender: a.Client}))
	}
	return opts, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

// loginNotice is the terminal Navigator: it tells the user to log in again. While held
// (a full-screen view owns the terminal) the notice is kept and printed on release.
type loginNotice struct {
	mu      sync.Mutex
	out     io.Writer
	held    bool
	pending string
}

func (n *loginNotice) ToLogin(reason string) {
	if reason == "" {
		reason = "Please log in."
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.held {
		n.pending = reason
		return
	}
	n.print(reason)
}

func (n *loginNotice) hold() {
	n.mu.Lock()
	n.held = true
	n.mu.Unlock()
}

func (n *loginNotice) release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.held = false
	if n.pending != "" {
		n.print(n.pending)
		n.pending = ""
	}
}

func (n *loginNotice) print(reason string) {
	fmt.Fprintf(n.out, "%s Run 'eazerepy login' to continue.\n", reason)
}
