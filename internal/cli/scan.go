package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runcell/runcell/internal/doctree"
	"github.com/runcell/runcell/internal/overlay"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	Languages []string
	Kinds     []string
}

// scanResult is the JSON output shape of the scan command.
type scanResult struct {
	Version     int64                `json:"version"`
	Descriptors []overlay.Descriptor `json:"descriptors"`
}

// NewScanCommand creates the scan command: load a document fixture, run the
// block scanner and overlay builder, print the resulting overlay.
func NewScanCommand(root *RootOptions) *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <document.yaml>",
		Short: "Print the widget overlay for a document fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&opts.Languages, "languages", nil, "override the recognized language set")
	cmd.Flags().StringSliceVar(&opts.Kinds, "kinds", nil, "override the recognized block kinds")

	return cmd
}

func runScan(cmd *cobra.Command, root *RootOptions, opts *ScanOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read document", err)
	}
	tree, err := doctree.UnmarshalDocument(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "load document", err)
	}

	var scanOpts []overlay.ScannerOption
	if len(opts.Languages) > 0 {
		scanOpts = append(scanOpts, overlay.WithLanguages(opts.Languages...))
	}
	if len(opts.Kinds) > 0 {
		scanOpts = append(scanOpts, overlay.WithBlockKinds(opts.Kinds...))
	}

	o := overlay.Build(tree, overlay.NewScanner(scanOpts...).Scan(tree))
	out := &OutputFormatter{Format: root.Format, Writer: cmd.OutOrStdout()}

	if root.Format == "json" {
		return out.JSON(scanResult{Version: o.Version(), Descriptors: o.Descriptors()})
	}

	ds := o.Descriptors()
	if err := out.Textf("document version %d: %d widget(s)", o.Version(), len(ds)); err != nil {
		return err
	}
	for _, d := range ds {
		preview := d.Payload.Source
		if idx := strings.IndexByte(preview, '\n'); idx >= 0 {
			preview = preview[:idx]
		}
		if err := out.Textf("  %s @ %d (%s) %q", d.Kind, d.Anchor, d.Payload.Language, preview); err != nil {
			return err
		}
	}
	return nil
}
