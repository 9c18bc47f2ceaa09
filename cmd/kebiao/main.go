// Package main provides the kebiao command: timetable text to iCalendar.
package main

import (
	"errors"
	"fmt"
	"os"
	_ "time/tzdata" // Asia/Shanghai in minimal container images

	"github.com/spf13/cobra"

	"github.com/garyellow/kebiao-ics/internal/buildinfo"
)

// errReported marks a failure already explained on the console.
var errReported = errors.New("reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	convert := newConvertCmd()

	root := &cobra.Command{
		Use:           "kebiao",
		Short:         "Convert a Chinese course timetable into an iCalendar file",
		Version:       buildinfo.DisplayVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          convert.RunE,
	}
	root.Flags().AddFlagSet(convert.Flags())

	root.AddCommand(convert, newServeCmd(), newHistoryCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
