package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fiado/internal/harness"
)

// NewValidateCommand creates the validate command, which checks
// scenario files against the embedded schema without executing them.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files against the schema",
		Long: `Validate one or more YAML scenario files against the scenario
schema. Files are checked only; no store operations are executed.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(cmd, rootOpts)

			failures := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					failures++
					_ = out.Error("VALIDATION", fmt.Sprintf("%s: %v", path, err))
					continue
				}
				if err := harness.ValidateScenarioBytes(path, data); err != nil {
					failures++
					_ = out.Error("VALIDATION", err.Error())
					continue
				}
				if err := out.Success(fmt.Sprintf("%s: ok", path), map[string]string{"file": path, "status": "ok"}); err != nil {
					return err
				}
			}

			if failures > 0 {
				return WrapExitError(ExitFailure, fmt.Sprintf("%d of %d files failed validation", failures, len(args)), nil)
			}
			return nil
		},
	}

	return cmd
}
