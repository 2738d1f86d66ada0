package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// ErrOverlapsFound возвращается validate --fail-on-overlap при найденных пересечениях
var ErrOverlapsFound = errors.New("overlapping supply periods found")

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand создает корневую команду fsecheck
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "fsecheck",
		Short:         "Offline and online validation of fuel supply equipment rows",
		Long:          "fsecheck classifies FSE sites against the configured region and reports\nequipment whose supply periods overlap.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", ".env", "env file with region and geocoder settings")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging to stderr")

	cmd.AddCommand(newValidateCmd(opts))

	return cmd
}

// Execute запускает CLI и возвращает код выхода процесса
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, ErrOverlapsFound) {
			return 2
		}
		return 1
	}
	return 0
}
