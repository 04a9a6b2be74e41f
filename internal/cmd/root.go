package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/findid/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for findid
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findid",
		Short: "Find Wwise objects by MediaID, GUID or ShortID",
		Long: `findid searches every work unit (.wwu) below a Wwise project root
for objects whose MediaID, GUID or ShortID contains a query string.

Matching is a case-insensitive substring test. Work units are parsed
in parallel; files that cannot be read or parsed are reported and
skipped without stopping the search.

Configuration is loaded from $FINDID_HOME/config.yaml (default
.findid/config.yaml). CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $FINDID_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewReplCommand())

	return cmd
}

// loadConfig reads the configuration for cmd: the --config file when given,
// otherwise the one in the findid home. --log-level is merged in and derived
// paths are resolved against the home directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	home, err := config.GetFindIDHome()
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(home)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		cfg.MergeWithFlags(nil, nil, &level, nil, nil)
	}

	cfg.ResolvePaths(home)
	return cfg, nil
}
