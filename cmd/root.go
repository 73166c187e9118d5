package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"teamdocs/internal/cli"
	"teamdocs/internal/config"
	"teamdocs/pkg/logging"
)

// rootCmd represents the base command for the teamdocs application.
var rootCmd *cobra.Command

func init() {
	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	opts := &cli.CommandFlags{}

	root := &cobra.Command{
		Use:   "teamdocs",
		Short: "Team workspaces and Google Drive documents from the terminal",
		Long: `teamdocs shows team workspaces (members, active tasks and documents)
and manages the Google Drive connection that documents depend on.

The Drive connection is an OAuth redirect through your browser. teamdocs
remembers an in-progress redirect per terminal session so that repeated
commands never open more than one consent screen.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.ParseOutputFormat(opts.OutputFormat); err != nil {
				return err
			}
			return initLogging(opts, cmd.ErrOrStderr())
		},
	}

	cli.RegisterCommonFlags(root, opts)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newDriveCmd(opts))
	root.AddCommand(newTeamCmd(opts))
	root.AddCommand(newDocCmd(opts))
	return root
}

func initLogging(opts *cli.CommandFlags, out io.Writer) error {
	level := logging.LevelWarn
	if opts.Debug {
		level = logging.LevelDebug
	}
	switch logging.Format(opts.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q (expected text or json)", opts.LogFormat)
	}
	if opts.Quiet && !opts.Debug {
		logging.Discard()
		return nil
	}
	logging.Init(level, logging.Format(opts.LogFormat), out)
	return nil
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with the code matching the error.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "teamdocs version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(cli.ExitCode(err))
	}
}

func printError(w io.Writer, err error) {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		fmt.Fprintln(w, cli.FormatError(errors.New(cfgErr.DetailedError())))
		return
	}
	fmt.Fprintln(w, cli.FormatError(err))
}
