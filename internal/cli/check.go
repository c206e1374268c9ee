package cli

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// execCheck classifies each address from args against the configured
// rules and prints the resulting action.
func execCheck(v *viper.Viper, args []string, stdout io.Writer) error {
	rule, err := parseFilteringRules(v, zap.NewNop(), "client")
	if err != nil {
		return errors.Wrap(err, "failed to parse rules")
	}
	for _, arg := range args {
		addr, parseErr := netip.ParseAddr(arg)
		if parseErr != nil {
			return errors.Wrapf(parseErr, "failed to parse address %q", arg)
		}
		if !addr.Is4() {
			return errors.Errorf("address %q is not IPv4", arg)
		}
		if _, err = fmt.Fprintf(stdout, "%s: %s\n", addr, rule.Action(addr)); err != nil {
			return err
		}
	}
	return nil
}

func getCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check <address>...",
		Short: "classify addresses against configured rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execCheck(v, args, cmd.OutOrStdout())
		},
	}
}
