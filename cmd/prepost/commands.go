package main

import (
	"github.com/netops-tools/prepost/internal/engine"
	"github.com/spf13/cobra"
)

func runCommandVerb(runType engine.RunType) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		doc, change, err := loadCommandDoc(args[0])
		if err != nil {
			return err
		}

		e, outputDir, err := newEngine(change)
		if err != nil {
			return err
		}
		defer e.Store.Close()

		batch, err := e.RunCommands(cmd.Context(), runType, doc)
		if err != nil {
			return err
		}
		writeMetrics(e, outputDir)
		return printBatch(batch)
	}
}

var printCmd = &cobra.Command{
	Use:   "print <change-dir|cmd-file>",
	Short: "Run print commands and show their output",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandVerb(engine.RunPrint),
}

var vitalCmd = &cobra.Command{
	Use:   "vital <change-dir>",
	Short: "Run vital commands and save a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandVerb(engine.RunVital),
}

var detailCmd = &cobra.Command{
	Use:   "detail <change-dir>",
	Short: "Run detail commands and save a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandVerb(engine.RunDetail),
}

var preCmd = &cobra.Command{
	Use:   "pre <change-dir>",
	Short: "Pre-change run: print, vital, detail and config snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandVerb(engine.RunPre),
}

var postCmd = &cobra.Command{
	Use:   "post <change-dir>",
	Short: "Post-change run: print, vital snapshot and diff against the pre run",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommandVerb(engine.RunPost),
}

func init() {
	rootCmd.AddCommand(printCmd, vitalCmd, detailCmd, preCmd, postCmd)
}
