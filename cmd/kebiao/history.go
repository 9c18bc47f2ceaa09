package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyellow/kebiao-ics/internal/app"
	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/storage"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd.Context())
			log := app.NewLogger(cfg, cmd.ErrOrStderr())
			defer func() { _ = log.Shutdown(ctx) }()

			db, err := app.OpenHistory(ctx, cfg, log)
			if err != nil {
				return err
			}
			if db == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "历史记录未启用")
				return nil
			}
			defer func() { _ = db.Close() }()

			list, err := db.ListConversions(ctx, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultHistoryLimit, "number of conversions to list")
	return cmd
}

func printHistory(w io.Writer, list []storage.Conversion) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "暂无转换记录")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCREATED\tSEMESTER START\tCOURSES\tEVENTS")
	for _, c := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n",
			c.ID, c.CreatedAt.Local().Format(time.DateTime), c.SemesterStart, c.CourseCount, c.EventCount)
	}
	return tw.Flush()
}
