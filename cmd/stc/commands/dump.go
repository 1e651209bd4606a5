package commands

import (
	"github.com/spf13/cobra"

	"martianoff/stc/internal/checker"
	"martianoff/stc/internal/dump"
)

var dumpCmd = &cobra.Command{
	Use:   "dump unit.yaml",
	Short: "Print the annotated tree of a unit",
	Long: `Check a unit and print its tree, one node per line, with the inferred
type and resolved target of every expression.

Diagnostics are not printed; use stc check for those.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		units, _, ok := s.load(cmd.ErrOrStderr(), args)
		if !ok {
			return errDiagnostics
		}
		c := checker.New(checker.WithConfig(s.cfg), checker.WithLogger(s.log))
		if _, err := c.CheckUnit(units[0]); err != nil {
			return err
		}
		return dump.Fprint(cmd.OutOrStdout(), units[0])
	},
}
