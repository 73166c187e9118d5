package cli

import (
	"github.com/spf13/cobra"
)

// CommandFlags holds the persistent flags shared by every command.
type CommandFlags struct {
	OutputFormat string
	Quiet        bool
	Debug        bool
	LogFormat    string
	ConfigPath   string
	APIURL       string
	SessionID    string
	// SessionBackend overrides session.backend (file, memory, redis).
	SessionBackend string
}

// RegisterCommonFlags registers the persistent flags on the root command.
//
// The registered flags are:
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --quiet/-q: Suppress spinners and hints
//   - --debug: Enable debug logging
//   - --log-format: text or json
//   - --config-path: Configuration directory (default ~/.config/teamdocs)
//   - --api-url: Backend URL (env: TEAMDOCS_API_URL)
//   - --session-id: Session identifier (env: TEAMDOCS_SESSION_ID)
//   - --session-backend: Where redirect flags live (env: TEAMDOCS_SESSION_BACKEND)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress spinners and hints")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "text", "Log format (text, json)")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", "", "Configuration directory (default ~/.config/teamdocs)")
	cmd.PersistentFlags().StringVar(&flags.APIURL, "api-url", "", "Backend URL (env: TEAMDOCS_API_URL)")
	cmd.PersistentFlags().StringVar(&flags.SessionID, "session-id", "", "Session identifier (env: TEAMDOCS_SESSION_ID)")
	cmd.PersistentFlags().StringVar(&flags.SessionBackend, "session-backend", "", "Where redirect flags live: file, memory or redis (env: TEAMDOCS_SESSION_BACKEND)")
}
