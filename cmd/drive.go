package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"teamdocs/internal/authgate"
	"teamdocs/internal/callback"
	"teamdocs/internal/cli"
	"teamdocs/internal/redirect"
	"teamdocs/internal/sessionflags"
	"teamdocs/pkg/logging"
)

func newDriveCmd(opts *cli.CommandFlags) *cobra.Command {
	driveCmd := &cobra.Command{
		Use:   "drive",
		Short: "Manage the Google Drive connection",
		Long: `Manage the Google Drive connection used to open documents.

Connecting redirects your browser to Google's consent screen. The backend
completes the OAuth exchange and sends the browser back to the callback
listener, which records the connection for every later command.`,
	}
	driveCmd.AddCommand(newDriveConnectCmd(opts))
	driveCmd.AddCommand(newDriveStatusCmd(opts))
	driveCmd.AddCommand(newDriveCallbackCmd(opts))
	return driveCmd
}

type connectOptions struct {
	retry      bool
	wait       bool
	returnPath string
}

func newDriveConnectCmd(opts *cli.CommandFlags) *cobra.Command {
	var co connectOptions
	c := &cobra.Command{
		Use:   "connect",
		Short: "Connect Google Drive",
		Long: `Connect Google Drive through the browser.

The redirect starts automatically after a short delay. If a redirect is
already in progress for this terminal session nothing new is opened; use
--retry to start over.

Examples:
  teamdocs drive connect               # Open the consent screen
  teamdocs drive connect --wait        # Also wait for the callback
  teamdocs drive connect --retry       # Discard a stuck redirect and try again`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runDriveConnect(cmd.Context(), rt, co)
		},
	}
	c.Flags().BoolVar(&co.retry, "retry", false, "Clear an in-progress redirect and start a new one immediately")
	c.Flags().BoolVar(&co.wait, "wait", false, "Run the callback listener and wait until the connection completes")
	c.Flags().StringVar(&co.returnPath, "return-path", callback.DefaultReturnPath, "Path to continue at after the callback")
	return c
}

func runDriveConnect(ctx context.Context, rt *runtime, co connectOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if rt.store.Connected() {
		fmt.Fprintln(rt.out, cli.FormatSuccess("Google Drive is already connected"))
		return nil
	}

	var cb *callback.Server
	if co.wait {
		cb = callback.NewServer(rt.cfg.Callback.Addr, rt.store, rt.flags, callback.WithFrontendURL(rt.cfg.FrontendURL))
		if _, err := cb.Start(ctx); err != nil {
			return err
		}
		defer cb.Stop()
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := rt.state.Watch(watchCtx, rt.store); err != nil {
			logging.Warn("AppState", "Not watching for connection changes: %v", err)
		}
	}()

	states := make(chan authgate.State, 8)
	gate := authgate.New(rt.store, rt.login, co.returnPath,
		authgate.WithDebounce(rt.cfg.Drive.Debounce),
		authgate.WithShowPrompt(true),
		authgate.OnChange(func(s authgate.State) {
			select {
			case states <- s:
			default:
			}
		}),
	)

	waiter := cli.NewWaiter(rt.errOut, rt.opts.Quiet)
	defer waiter.Stop()

	state := gate.Mount(ctx)
	defer gate.Unmount()
	redirected := state == authgate.StateRedirecting

	if co.retry {
		redirected = true
		waiter.Start("Opening the Google Drive consent screen")
		if err := gate.Retry(ctx); err != nil && !errors.Is(err, redirect.ErrRedirectInProgress) {
			waiter.Stop()
			return &cli.RedirectFailedError{Reason: err}
		}
	} else if redirected {
		waiter.Start("Opening the Google Drive consent screen")
	}

	state, err := settle(ctx, gate, states)
	if err != nil {
		return err
	}
	if state == authgate.StateConnected {
		waiter.Succeed("Google Drive connected")
		return nil
	}
	if lastErr := gate.LastError(); lastErr != nil {
		if errors.Is(lastErr, redirect.ErrRedirectInProgress) {
			redirected = false
		} else {
			waiter.Stop()
			return &cli.RedirectFailedError{Reason: lastErr}
		}
	}

	if !co.wait {
		waiter.Stop()
		if !redirected {
			return &cli.DriveConnectionRequiredError{Pending: true}
		}
		rt.hint("Complete the authorization in your browser.")
		rt.hint("Not redirected? Run: teamdocs drive connect --retry")
		return nil
	}

	waiter.Start("Waiting for Google Drive authorization (Ctrl+C to cancel)")
	rt.hint("Not redirected? Run: teamdocs drive connect --retry")
	return waitForConnection(ctx, rt, cb, states, waiter)
}

// settle waits for any scheduled or in-flight redirect to finish.
func settle(ctx context.Context, gate *authgate.Gate, states <-chan authgate.State) (authgate.State, error) {
	for {
		s := gate.State()
		if s != authgate.StateRedirecting {
			return s, nil
		}
		select {
		case <-states:
		case <-ctx.Done():
			return s, ctx.Err()
		}
	}
}

func waitForConnection(ctx context.Context, rt *runtime, cb *callback.Server, states <-chan authgate.State, waiter *cli.Waiter) error {
	waitCtx, cancel := context.WithTimeout(ctx, callback.Timeout)
	defer cancel()

	type outcome struct {
		result *callback.Result
		err    error
	}
	results := make(chan outcome, 1)
	go func() {
		res, err := cb.WaitForResult(waitCtx)
		results <- outcome{res, err}
	}()

	for {
		select {
		case s := <-states:
			if s == authgate.StateConnected {
				waiter.Succeed("Google Drive connected")
				return nil
			}
		case o := <-results:
			if o.err != nil {
				if errors.Is(o.err, context.DeadlineExceeded) {
					waiter.Fail("Timed out waiting for Google Drive authorization")
					return &cli.DriveConnectionRequiredError{Pending: true}
				}
				waiter.Stop()
				return o.err
			}
			if !o.result.Success {
				waiter.Fail(callback.FailureMessage)
				return &cli.RedirectFailedError{Reason: errors.New(callback.FailureMessage)}
			}
			waiter.Succeed("Google Drive connected")
			rt.hint("Continue at %s", o.result.ReturnPath)
			return nil
		}
	}
}

func newDriveStatusCmd(opts *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the Google Drive connection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			view, err := driveStatus(rt)
			if err != nil {
				return err
			}
			if format := rt.outputFormat(); format != cli.OutputFormatTable {
				return cli.WriteStructured(rt.out, format, view)
			}
			cli.RenderStatus(rt.out, view)
			if !view.Redirecting && view.Connection != "connected" {
				rt.hint("To connect, run: teamdocs drive connect")
			}
			return nil
		},
	}
}

func driveStatus(rt *runtime) (cli.StatusView, error) {
	redirecting, err := sessionflags.Redirecting(rt.flags)
	if err != nil {
		return cli.StatusView{}, fmt.Errorf("failed to read session flags: %w", err)
	}
	returnPath, _, err := rt.flags.Get(sessionflags.KeyReturnPath)
	if err != nil {
		return cli.StatusView{}, fmt.Errorf("failed to read session flags: %w", err)
	}
	return cli.StatusView{
		Session:     rt.session.ID,
		Connection:  rt.store.Status().String(),
		Redirecting: redirecting,
		ReturnPath:  returnPath,
	}, nil
}

func newDriveCallbackCmd(opts *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "callback",
		Short: "Run the OAuth callback listener",
		Long: `Run the local listener that the browser returns to after the Google
Drive consent screen, and exit once it has handled one callback.

Use this when the redirect was started by another command, for example
'teamdocs doc open'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runDriveCallback(cmd.Context(), rt)
		},
	}
}

func runDriveCallback(ctx context.Context, rt *runtime) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cb := callback.NewServer(rt.cfg.Callback.Addr, rt.store, rt.flags, callback.WithFrontendURL(rt.cfg.FrontendURL))
	callbackURL, err := cb.Start(ctx)
	if err != nil {
		return err
	}
	defer cb.Stop()
	rt.hint("Listening for the Google Drive callback on %s", callbackURL)

	waitCtx, cancel := context.WithTimeout(ctx, callback.Timeout)
	defer cancel()
	result, err := cb.WaitForResult(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no callback received within %s", callback.Timeout)
		}
		return err
	}
	if !result.Success {
		return &cli.RedirectFailedError{Reason: errors.New(callback.FailureMessage)}
	}
	fmt.Fprintln(rt.out, cli.FormatSuccess("Google Drive connected"))
	rt.hint("Continue at %s", result.ReturnPath)
	return nil
}
