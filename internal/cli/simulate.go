package cli

import (
	"github.com/spf13/cobra"

	"github.com/runcell/runcell/internal/harness"
)

// NewSimulateCommand creates the simulate command: run an edit-script
// scenario against a fresh engine and print the lifecycle trace.
func NewSimulateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run an edit-script scenario and print the engine trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, root, args[0])
		},
	}
}

func runSimulate(cmd *cobra.Command, root *RootOptions, path string) error {
	s, err := harness.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenario", err)
	}

	result, err := harness.Run(s)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario failed", err)
	}

	out := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}
	if root.Format == "json" {
		return out.JSON(result)
	}

	if err := out.Textf("scenario %s: %d step event(s)", result.ScenarioName, len(result.Trace)); err != nil {
		return err
	}
	for _, ev := range result.Trace {
		switch ev.Type {
		case harness.EventInit, harness.EventRebuild:
			if err := out.Textf("  %-8s v%-3d widgets=%d created=%d destroyed=%d anchors=%v",
				ev.Type, ev.Version, ev.Widgets, ev.Created, ev.Destroyed, ev.Anchors); err != nil {
				return err
			}
		case harness.EventRemap:
			if err := out.Textf("  %-8s v%-3d widgets=%d anchors=%v",
				ev.Type, ev.Version, ev.Widgets, ev.Anchors); err != nil {
				return err
			}
		case harness.EventRender:
			if err := out.Textf("  %-8s rendered=%d skipped=%d", ev.Type, ev.Rendered, ev.Skipped); err != nil {
				return err
			}
		case harness.EventDestroy:
			if err := out.Textf("  %-8s destroyed=%d", ev.Type, ev.Destroyed); err != nil {
				return err
			}
		}
	}
	if err := out.Textf("final: widgets=%d anchors=%v", result.FinalWidgets, result.FinalAnchors); err != nil {
		return err
	}
	return nil
}
