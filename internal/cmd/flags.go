package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	oerrors "github.com/pyskel/cli/internal/errors"
)

// flagError turns pflag parse failures into usage errors carrying the
// command's usage text.
func flagError(cmd *cobra.Command, err error) error {
	return oerrors.NewUsageError(err.Error(), cmd.UsageString())
}

// usageArgs wraps a cobra positional-args validator so its failures are
// usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return oerrors.NewUsageError(err.Error(), cmd.UsageString())
		}
		return nil
	}
}

// outputFormatError rejects an unknown -o value.
func outputFormatError(cmd *cobra.Command, value string, valid []string) error {
	return oerrors.NewUsageError(
		fmt.Sprintf("invalid output format %q (valid: %v)", value, valid),
		cmd.UsageString())
}
