package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"martianoff/stc/internal/checker"
	"martianoff/stc/stcerr"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check unit.yaml...",
	Short: "Type check units",
	Long: `Type check one or more units and print every diagnostic.

The exit status is 1 when a unit fails to load or any diagnostic is reported.

Examples:
  stc check shapes.yaml                  # Check one unit
  stc check -s lib a.yaml b.yaml         # Resolve imports from lib
  stc check --json shapes.yaml           # Machine readable output`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print diagnostics as JSON")
}

// jsonDiagnostic is one diagnostic in --json output.
type jsonDiagnostic struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	s, err := newSession(stderr)
	if err != nil {
		return err
	}
	units, names, ok := s.load(stderr, args)

	c := checker.New(checker.WithConfig(s.cfg), checker.WithLogger(s.log))
	reports, internalErr := c.CheckAll(units)

	var diags []*stcerr.Diagnostic
	for i, r := range reports {
		if r == nil {
			continue
		}
		for _, d := range r.Diagnostics {
			diags = append(diags, d.InFile(names[i]))
		}
		s.log.WithField("unit", names[i]).WithField("diagnostics", len(r.Diagnostics)).Debug("checked")
	}

	if checkJSON {
		if err := writeJSON(stdout, diags); err != nil {
			return err
		}
	} else {
		writeText(stdout, diags, colorEnabled(stdout))
	}

	if internalErr != nil {
		return internalErr
	}
	if !ok || len(diags) > 0 {
		return errDiagnostics
	}
	return nil
}

func writeJSON(w io.Writer, diags []*stcerr.Diagnostic) error {
	out := make([]jsonDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = jsonDiagnostic{
			File:      d.FilePath,
			Line:      d.Line,
			Column:    d.Column,
			EndLine:   d.EndLine,
			EndColumn: d.EndColumn,
			Type:      string(d.Type()),
			Message:   d.Msg,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

const (
	colorRed   = "\x1b[31m"
	colorBold  = "\x1b[1m"
	colorReset = "\x1b[0m"
)

func writeText(w io.Writer, diags []*stcerr.Diagnostic, color bool) {
	for _, d := range diags {
		loc := fmt.Sprintf("%s:%d:%d", d.FilePath, d.Line, d.Column)
		if d.Synthetic() {
			loc = d.FilePath
		}
		if color {
			fmt.Fprintf(w, "%s%s%s: %serror%s: %s [%s]\n", colorBold, loc, colorReset, colorRed, colorReset, d.Msg, d.Type())
			continue
		}
		fmt.Fprintf(w, "%s: error: %s [%s]\n", loc, d.Msg, d.Type())
	}
}
