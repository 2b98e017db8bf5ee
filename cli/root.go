// Package cli implements the chatops command line.
package cli

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// NewRootCmd creates the top-level chatops CLI command with all subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatops",
		Short:         "Tool-augmented support assistant",
		Long:          "chatops bridges a chat surface with the tool gateway through an LLM.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			xlog.SetGlobalLogLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "cfg", "chatops.yaml", "configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG|INFO|WARNING|ERROR")

	cmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
	)

	return cmd
}

func parseLogLevel(level string) (xlog.LogLevel, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return xlog.DEBUG, nil
	case "INFO":
		return xlog.INFO, nil
	case "WARNING":
		return xlog.WARNING, nil
	case "ERROR":
		return xlog.ERROR, nil
	default:
		return 0, errors.Newf("unknown log level: %s", level)
	}
}
