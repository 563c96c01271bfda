package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var genvalCmd = &cobra.Command{
	Use:   "genval <change-dir|index-file>",
	Short: "Generate validation file skeletons from a feature index",
	Long: `Expands the change's feature index against each host's current state
into per-host validation files. Without an index file every enabled feature
is covered. Generated desired values are seeded from current state, giving a
snapshot-as-desired baseline the operator can trim.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := args[0]
		indexPath := cfg.IndexFile(arg)
		change := arg
		if isYAMLPath(arg) {
			indexPath = arg
			change = filepath.Dir(arg)
		}

		entries, err := loadIndexEntries(indexPath)
		if err != nil {
			return err
		}

		valDir, err := cfg.ValFilesDir(change)
		if err != nil {
			return err
		}

		e, _, err := newEngine(change)
		if err != nil {
			return err
		}
		defer e.Store.Close()

		batch, paths, err := e.GenerateValFiles(cmd.Context(), entries, valDir)
		if err != nil {
			return err
		}
		for _, path := range paths {
			fmt.Printf("%s created validation file %s\n", okMark("✔"), path)
		}
		return printBatch(batch)
	},
}

// loadIndexEntries reads the index document: a YAML list of
// feature.subfeature identifiers. A missing file means full coverage.
func loadIndexEntries(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}

	var entries []string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index file %s: %w", path, err)
	}
	return entries, nil
}

func init() {
	rootCmd.AddCommand(genvalCmd)
}
