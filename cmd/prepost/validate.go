package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netops-tools/prepost/pkg/compliance"
	"github.com/netops-tools/prepost/pkg/spec"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <change-dir|val-file>",
	Short: "Evaluate collected state against validation files",
	Long: `Merges the change's validation files (or one explicit file) into an
effective desired state per host, evaluates it against gathered facts and
prints the compliance report. The exit status reflects the aggregate
outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		arg := args[0]

		var doc *spec.Document
		var err error
		change := arg
		saveReport := true
		if isYAMLPath(arg) {
			// Direct file: report goes to screen only.
			doc, err = spec.Load(arg, spec.KindValidation)
			change = filepath.Dir(arg)
			saveReport = false
		} else {
			valDir, dirErr := cfg.ValFilesDir(arg)
			if dirErr != nil {
				return dirErr
			}
			doc, err = spec.LoadDir(valDir, spec.KindValidation)
		}
		if err != nil {
			return err
		}

		e, outputDir, err := newEngine(change)
		if err != nil {
			return err
		}
		defer e.Store.Close()

		batch, err := e.Validate(cmd.Context(), doc)
		if err != nil {
			return err
		}

		compliance.RenderText(os.Stdout, batch.Report)
		if saveReport {
			path, err := compliance.WriteJSON(batch.Report, outputDir)
			if err != nil {
				return err
			}
			fmt.Printf("%s created compliance report %s\n", okMark("✔"), path)
		}
		writeMetrics(e, outputDir)

		if err := printBatch(batch); err != nil {
			return err
		}
		if !batch.Complies {
			return fmt.Errorf("compliance report failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
