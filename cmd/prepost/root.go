package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netops-tools/prepost/pkg/config"
	"github.com/netops-tools/prepost/pkg/inventory"
	"github.com/netops-tools/prepost/pkg/logger"
	"github.com/spf13/cobra"

	_ "github.com/netops-tools/prepost/pkg/runner/mock"
)

var (
	flagConfig    string
	flagEnvFile   string
	flagInventory string
	flagUsername  string
	flagTransport string
	flagFactsDir  string

	flagNames     string
	flagGroups    string
	flagLocations string
	flagVersions  string

	cfg *config.Config
	inv *inventory.Inventory
)

var rootCmd = &cobra.Command{
	Use:   "prepost",
	Short: "Before/after network change validation",
	Long: `prepost gathers command output and configuration state from network
devices, stores timestamped snapshots per change window, diffs the last two
runs and evaluates collected state against declarative validation files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotenv(flagEnvFile); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagUsername != "" {
			cfg.Device.Username = flagUsername
		}

		components := make(map[string]logger.LogLevel, len(cfg.Logging.Components))
		for name, level := range cfg.Logging.Components {
			components[name] = logger.LogLevel(level)
		}
		logger.Configure(cfg.Logging.Format, logger.LogLevel(cfg.Logging.Level), components)

		invDir := flagInventory
		if invDir == "" {
			invDir = filepath.Join(cfg.BaseDirectory, "inventory")
		}
		inv, err = inventory.Load(
			filepath.Join(invDir, "hosts.yml"),
			filepath.Join(invDir, "groups.yml"),
		)
		if err != nil {
			return err
		}

		inv = inv.Filter(inventory.FilterOptions{
			Names:     flagNames,
			Groups:    flagGroups,
			Locations: flagLocations,
			Versions:  flagVersions,
		})
		if len(inv.Hosts) == 0 {
			return fmt.Errorf("inventory filter matched no hosts")
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "prepost.yml", "Path to the tool configuration file")
	pf.StringVar(&flagEnvFile, "env-file", ".env", "Environment file loaded before configuration")
	pf.StringVar(&flagInventory, "inventory", "", "Inventory directory holding hosts.yml and groups.yml")
	pf.StringVarP(&flagUsername, "username", "u", "", "Device username, overrides environment and configuration")
	pf.StringVar(&flagTransport, "transport", "mock", "Device transport to run commands with")
	pf.StringVar(&flagFactsDir, "facts-dir", "", "Directory of per-host facts files used for validation")

	pf.StringVarP(&flagNames, "name", "n", "", "Filter hosts by name substring, comma separated")
	pf.StringVarP(&flagGroups, "group", "g", "", "Filter hosts by group membership, comma separated")
	pf.StringVarP(&flagLocations, "location", "l", "", "Filter hosts by location, comma separated")
	pf.StringVar(&flagVersions, "os-version", "", "Filter hosts by OS version, comma separated")
}

// Execute runs the root command. The process exit status reflects the
// outcome: compliance failures and host errors exit non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
