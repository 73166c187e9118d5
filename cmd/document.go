package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"teamdocs/internal/cli"
	"teamdocs/internal/deletion"
	"teamdocs/internal/model"
	"teamdocs/internal/permission"
	"teamdocs/internal/redirect"
	"teamdocs/internal/workspace"
)

// newPrompter is replaced in tests.
var newPrompter = func(out io.Writer) (*cli.Prompter, error) {
	return cli.NewPrompter(out)
}

func newDocCmd(opts *cli.CommandFlags) *cobra.Command {
	docCmd := &cobra.Command{
		Use:   "doc",
		Short: "Open or delete team documents",
	}

	docCmd.AddCommand(&cobra.Command{
		Use:   "open <team-id> <doc-id>",
		Short: "Open a document in the browser",
		Long: `Open a document in the web viewer.

Documents live in Google Drive. When Drive is not connected the connection
is started instead and the command exits with code 2; run it again once
the connection completes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, docID, err := parseDocArgs(args)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runDocOpen(cmd.Context(), rt, teamID, docID)
		},
	})

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <team-id> <doc-id>",
		Short: "Delete a document",
		Long: `Delete a document after confirmation.

You may delete documents you own, and the team owner may delete any
document of the team.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, docID, err := parseDocArgs(args)
			if err != nil {
				return err
			}
			rt, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			return runDocDelete(cmd.Context(), rt, teamID, docID, yes)
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	docCmd.AddCommand(deleteCmd)

	return docCmd
}

func parseDocArgs(args []string) (int, int, error) {
	teamID, err := parseID("team", args[0])
	if err != nil {
		return 0, 0, err
	}
	docID, err := parseID("document", args[1])
	if err != nil {
		return 0, 0, err
	}
	return teamID, docID, nil
}

func teamPath(teamID int) string {
	return fmt.Sprintf("/team/%d", teamID)
}

func findDocument(snap *workspace.Snapshot, teamID, docID int) (*model.Document, error) {
	doc, ok := snap.Document(docID)
	if !ok {
		return nil, fmt.Errorf("document %d not found in team %d", docID, teamID)
	}
	return doc, nil
}

func runDocOpen(ctx context.Context, rt *runtime, teamID, docID int) error {
	agg := workspace.NewAggregator(rt.client)
	defer agg.Close()

	snap, err := loadWorkspace(ctx, rt, agg, teamID)
	if err != nil {
		return err
	}
	doc, err := findDocument(snap, teamID, docID)
	if err != nil {
		return err
	}

	opener := workspace.NewOpener(rt.store, rt.login, rt.nav, rt.cfg.FrontendURL)
	err = opener.OpenDocument(ctx, doc, teamPath(teamID))
	switch {
	case err == nil:
		fmt.Fprintln(rt.out, cli.FormatSuccess(fmt.Sprintf("Opened %q", doc.Title)))
		return nil
	case errors.Is(err, redirect.ErrRedirectInProgress):
		return &cli.DriveConnectionRequiredError{Pending: true}
	case err == workspace.ErrNotConnected:
		return &cli.DriveConnectionRequiredError{}
	case errors.Is(err, workspace.ErrNotConnected):
		return &cli.RedirectFailedError{Reason: err}
	default:
		return err
	}
}

func runDocDelete(ctx context.Context, rt *runtime, teamID, docID int, yes bool) error {
	agg := workspace.NewAggregator(rt.client)
	defer agg.Close()

	snap, err := loadWorkspace(ctx, rt, agg, teamID)
	if err != nil {
		return err
	}
	doc, err := findDocument(snap, teamID, docID)
	if err != nil {
		return err
	}

	perms := permission.Evaluate(rt.user, snap.Team)
	flow := deletion.NewFlow(rt.client, agg, deletion.WithPermission(perms.CanDelete))
	if err := flow.RequestDelete(doc); err != nil {
		if errors.Is(err, deletion.ErrNotPermitted) {
			return fmt.Errorf("you may not delete %q: only its owner or the team owner can: %w", doc.Title, err)
		}
		return err
	}

	var prompter *cli.Prompter
	if !yes {
		prompter, err = newPrompter(rt.errOut)
		if err != nil {
			return err
		}
		defer prompter.Close()

		ok, err := prompter.Confirm(fmt.Sprintf("Delete %q? This cannot be undone.", doc.Title))
		if err != nil || !ok {
			_ = flow.Cancel()
			if err != nil && !errors.Is(err, cli.ErrAborted) {
				return err
			}
			rt.hint("Cancelled")
			return nil
		}
	}

	for {
		err := flow.Confirm(ctx)
		if err == nil {
			fmt.Fprintln(rt.out, cli.FormatSuccess(fmt.Sprintf("Deleted %q", doc.Title)))
			return nil
		}
		var failed *deletion.FailedError
		if !errors.As(err, &failed) {
			return err
		}

		rt.notifier.Error(flow.Message())
		if prompter == nil {
			return failed
		}
		choice, perr := prompter.Choose("Try again?", "retry", "cancel")
		if perr != nil || choice != "retry" {
			_ = flow.Cancel()
			return failed
		}
	}
}
