package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/dashd/internal/automation"
	"github.com/groblegark/dashd/internal/ui"
)

var automationsFile string

const (
	colorGreen = "\033[32m"
	colorDim   = "\033[2m"
	colorReset = "\033[0m"
)

var automationsCmd = &cobra.Command{
	Use:   "automations",
	Short: "List configured automations and their next run times",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := automationsFile
		if path == "" {
			path = os.Getenv("DASHD_AUTOMATIONS_FILE")
		}
		if path == "" {
			return fmt.Errorf("no automations file (set --file or DASHD_AUTOMATIONS_FILE)")
		}

		automations, err := automation.LoadRegistry(path)
		if err != nil {
			return err
		}
		if len(automations) == 0 {
			fmt.Println("no automations configured")
			return nil
		}

		color := ui.ShouldUseColor()
		now := time.Now()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tENABLED\tNEXT RUN")
		for _, a := range automations {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, enabledLabel(a.Enabled, color), nextRunLabel(a, now, color))
		}
		return w.Flush()
	},
}

func init() {
	automationsCmd.Flags().StringVar(&automationsFile, "file", "", "path to the TOML automations registry")
}

func enabledLabel(enabled, color bool) string {
	if enabled {
		if color {
			return colorGreen + "yes" + colorReset
		}
		return "yes"
	}
	if color {
		return colorDim + "no" + colorReset
	}
	return "no"
}

func nextRunLabel(a *automation.Automation, now time.Time, color bool) string {
	next := automation.CalculateNextRun(a, now)
	switch {
	case next == nil:
		if color {
			return colorDim + "never" + colorReset
		}
		return "never"
	case next.Phrase != "":
		return next.Phrase
	default:
		return next.At.Format("2006-01-02 15:04")
	}
}
