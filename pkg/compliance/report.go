package compliance

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

var (
	passMark = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// RenderText writes the human-readable report form.
func RenderText(w io.Writer, report *Report) {
	for _, host := range report.Hosts {
		verdict := passMark("PASS")
		if !host.Complies {
			verdict = failMark("FAIL")
		}
		fmt.Fprintf(w, "%s: %s\n", host.Host, verdict)

		for _, c := range host.Checks {
			if c.Passed {
				fmt.Fprintf(w, "  %s %s\n", passMark("✔"), c.Path)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", failMark("✘"), c.Path, c.Reason)
		}
	}

	if report.Complies {
		fmt.Fprintf(w, "Compliance report: %s\n", passMark("PASS"))
	} else {
		fmt.Fprintf(w, "Compliance report: %s\n", failMark("FAIL"))
	}
}

// WriteJSON writes the machine-parseable report form into dir and returns
// the file path.
func WriteJSON(report *Report, dir string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal compliance report: %w", err)
	}

	name := fmt.Sprintf("compliance_report_%s.json", time.Now().Format("20060102-1504"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write compliance report: %w", err)
	}
	return path, nil
}
