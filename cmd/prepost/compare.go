package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <change-dir> <file1> <file2>",
	Short: "Diff two named snapshot files into an HTML report",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		change := args[0]
		fileA := filepath.Join(cfg.ChangeDir(change), args[1])
		fileB := filepath.Join(cfg.ChangeDir(change), args[2])
		for _, f := range []string{fileA, fileB} {
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("compare file %s does not exist", f)
			}
		}

		e, outputDir, err := newEngine(change)
		if err != nil {
			return err
		}
		defer e.Store.Close()

		report, err := e.CompareFiles(fileA, fileB)
		if err != nil {
			return err
		}
		writeMetrics(e, outputDir)
		fmt.Printf("%s created compare report %s\n", okMark("✔"), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
