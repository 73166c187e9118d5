package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"teamdocs/internal/cli"
	"teamdocs/internal/workspace"
	"teamdocs/pkg/logging"
)

func newTeamCmd(opts *cli.CommandFlags) *cobra.Command {
	teamCmd := &cobra.Command{
		Use:   "team",
		Short: "Inspect team workspaces",
	}
	teamCmd.AddCommand(&cobra.Command{
		Use:   "show <team-id>",
		Short: "Show a team's members, active tasks and documents",
		Long: `Show a team workspace: its members (the owner is marked), the active
tasks (overdue ones are marked) and its documents, with whether you may
delete each one.

Examples:
  teamdocs team show 7
  teamdocs team show 7 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, err := parseID("team", args[0])
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runTeamShow(cmd.Context(), rt, teamID)
		},
	})
	return teamCmd
}

func runTeamShow(ctx context.Context, rt *runtime, teamID int) error {
	agg := workspace.NewAggregator(rt.client)
	defer agg.Close()

	snap, err := loadWorkspace(ctx, rt, agg, teamID)
	if err != nil {
		return err
	}

	view := cli.BuildTeamView(snap, rt.user, time.Now())
	if format := rt.outputFormat(); format != cli.OutputFormatTable {
		return cli.WriteStructured(rt.out, format, view)
	}
	cli.RenderTeamView(rt.out, view)
	if rt.user == nil {
		rt.hint("Set user.id in config.yaml or TEAMDOCS_USER_ID to see your permissions.")
	}
	if !rt.store.Connected() {
		rt.hint("Google Drive is not connected. Opening a document will start the connection.")
	}
	return nil
}

// loadWorkspace loads a team with a spinner and maps load failures to
// user-facing errors.
func loadWorkspace(ctx context.Context, rt *runtime, agg *workspace.Aggregator, teamID int) (*workspace.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	waiter := cli.NewWaiter(rt.errOut, rt.opts.Quiet || rt.outputFormat() != cli.OutputFormatTable)
	waiter.Start(fmt.Sprintf("Loading team %d", teamID))
	snap, err := agg.LoadTeam(ctx, teamID)
	waiter.Stop()
	if err == nil {
		return snap, nil
	}

	var loadErr *workspace.LoadError
	if errors.As(err, &loadErr) {
		logging.Debug("Workspace", "Load of team %d failed at %s: %v", teamID, loadErr.Step, loadErr.Err)
		var connErr *cli.ConnectionError
		if classified := cli.ClassifyConnectionError(loadErr.Err, rt.client.BaseURL()); errors.As(classified, &connErr) {
			return nil, fmt.Errorf("%s: %w", loadErr.Error(), connErr)
		}
	}
	return nil, err
}

func parseID(kind, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive integer", kind, raw)
	}
	return id, nil
}
