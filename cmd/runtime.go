package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"teamdocs/internal/apiclient"
	"teamdocs/internal/appstate"
	"teamdocs/internal/cli"
	"teamdocs/internal/config"
	"teamdocs/internal/model"
	"teamdocs/internal/notify"
	"teamdocs/internal/redirect"
	"teamdocs/internal/sessionflags"
	"teamdocs/pkg/logging"
)

const stateFileName = "state.json"

// runtime is the set of collaborators shared by every command. It is built
// once per invocation.
type runtime struct {
	cfg     config.Config
	opts    *cli.CommandFlags
	user    *model.CurrentUser
	session sessionflags.Session

	flags    sessionflags.Store
	state    *appstate.FileBackend
	store    *appstate.Store
	client   *apiclient.Client
	notifier notify.Notifier
	nav      redirect.Navigator
	login    *redirect.Coordinator

	out    io.Writer
	errOut io.Writer

	closers []func() error
}

func newRuntime(cmd *cobra.Command, opts *cli.CommandFlags) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.SessionID != "" {
		cfg.Session.ID = opts.SessionID
	}
	if opts.SessionBackend != "" {
		cfg.Session.Backend = opts.SessionBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt := &runtime{
		cfg:    cfg,
		opts:   opts,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	if cfg.User.ID > 0 {
		rt.user = &model.CurrentUser{ID: cfg.User.ID, Name: cfg.User.Name}
	}

	if cfg.Session.ID != "" {
		rt.session = sessionflags.Session{ID: sessionflags.SanitizeID(cfg.Session.ID)}
	} else {
		rt.session = sessionflags.CurrentSession()
	}

	stateDir, err := resolveStateDir(cfg)
	if err != nil {
		return nil, err
	}

	if err := rt.openFlags(cmd.Context(), stateDir); err != nil {
		rt.Close()
		return nil, err
	}

	rt.state, err = appstate.NewFileBackend(filepath.Join(stateDir, stateFileName))
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.store = appstate.NewStore(appstate.WithBackend(rt.state))
	if err := rt.store.Reload(); err != nil {
		logging.Warn("AppState", "Treating Drive as disconnected: %v", err)
	}

	clientOpts := []apiclient.Option{apiclient.WithLogger(logging.For("APIClient"))}
	if cfg.Token != "" {
		clientOpts = append(clientOpts, apiclient.WithToken(cfg.Token))
	}
	if cfg.SessionCookie != "" {
		clientOpts = append(clientOpts, apiclient.WithSessionCookie(cfg.SessionCookie))
	}
	rt.client, err = apiclient.New(cfg.APIURL, clientOpts...)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.notifier = notify.NewConsoleNotifier(rt.errOut, true)
	if cfg.Drive.OpenBrowser {
		rt.nav = redirect.NewBrowserNavigator(rt.errOut)
	} else {
		rt.nav = redirect.PrintNavigator{Out: rt.errOut}
	}
	rt.login = redirect.NewCoordinator(rt.flags, rt.client, rt.nav, rt.notifier)

	logging.Debug("Config", "Session %s, flags backend %s, api %s", rt.session.ID, cfg.Session.Backend, cfg.APIURL)
	return rt, nil
}

// resolveStateDir returns the directory holding state.json and sessions/.
func resolveStateDir(cfg config.Config) (string, error) {
	if cfg.Session.StateDir != "" {
		return cfg.Session.StateDir, nil
	}
	sessions, err := sessionflags.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Dir(sessions), nil
}

func (rt *runtime) openFlags(ctx context.Context, stateDir string) error {
	switch rt.cfg.Session.Backend {
	case config.SessionBackendMemory:
		rt.flags = sessionflags.NewMemoryStore()
		return nil

	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     rt.cfg.Session.Redis.Addr,
			Password: rt.cfg.Session.Redis.Password,
			DB:       rt.cfg.Session.Redis.DB,
		})
		rt.closers = append(rt.closers, client.Close)

		if ctx == nil {
			ctx = context.Background()
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", rt.cfg.Session.Redis.Addr, err)
		}
		rt.flags = sessionflags.NewRedisStore(client, rt.session, rt.cfg.Session.Redis.TTL)
		return nil

	default:
		dir := filepath.Join(stateDir, "sessions")
		if _, err := sessionflags.Prune(dir, nil); err != nil {
			logging.Warn("SessionFlags", "Could not prune old sessions: %v", err)
		}
		store, err := sessionflags.NewFileStore(dir, rt.session)
		if err != nil {
			return err
		}
		rt.flags = store
		return nil
	}
}

// Close releases connections opened by the runtime.
func (rt *runtime) Close() {
	for _, closer := range rt.closers {
		if err := closer(); err != nil {
			logging.Debug("Config", "Close failed: %v", err)
		}
	}
	rt.closers = nil
}

// outputFormat returns the validated --output value.
func (rt *runtime) outputFormat() cli.OutputFormat {
	format, err := cli.ParseOutputFormat(rt.opts.OutputFormat)
	if err != nil {
		return cli.OutputFormatTable
	}
	return format
}

// hint prints a secondary line unless --quiet.
func (rt *runtime) hint(format string, args ...interface{}) {
	if rt.opts.Quiet {
		return
	}
	fmt.Fprintf(rt.errOut, format+"\n", args...)
}
