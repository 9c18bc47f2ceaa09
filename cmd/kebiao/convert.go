package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/garyellow/kebiao-ics/internal/app"
	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/converter"
	"github.com/garyellow/kebiao-ics/internal/ctxutil"
	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
	"github.com/garyellow/kebiao-ics/internal/report"
	"github.com/garyellow/kebiao-ics/internal/sentry"
)

type convertOptions struct {
	input       string
	start       string
	icsPath     string
	jsonPath    string
	publish     bool
	metricsFile string
}

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a timetable file into schedule.ics and course_data.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.applyDefaults(cfg)
			return runConvert(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "timetable text file (default kebiao.txt)")
	f.StringVarP(&opts.start, "start", "s", "", "semester start date YYYY-MM-DD (prompted when empty)")
	f.StringVar(&opts.icsPath, "ics", "", "calendar output path (default schedule.ics)")
	f.StringVar(&opts.jsonPath, "json", "", "summary output path (default course_data.json)")
	f.BoolVar(&opts.publish, "publish", false, "upload the artifacts to R2")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics of this run to a textfile")
	return cmd
}

// applyDefaults fills unset flags from configuration.
func (o *convertOptions) applyDefaults(cfg *config.Config) {
	if o.input == "" {
		o.input = cfg.InputPath
	}
	if o.icsPath == "" {
		o.icsPath = cfg.ICSPath
	}
	if o.jsonPath == "" {
		o.jsonPath = cfg.JSONPath
	}
}

func runConvert(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cfg *config.Config, opts *convertOptions) error {
	ctx = commandContext(ctx)
	console := report.NewConsole(stdout)
	console.Banner()
	defer console.Footer()

	log := app.NewLogger(cfg, stderr)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = log.Shutdown(shutdownCtx)
	}()
	app.InitSentry(cfg, log)
	defer sentry.Flush(2 * time.Second)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	svc := app.NewConverter(cfg, log, m)
	ctx = ctxutil.WithSource(ctx, converter.SourceCLI)

	err := convertOnce(ctx, stdin, console, log, cfg, m, svc, opts)
	if opts.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(opts.metricsFile, registry); werr != nil {
			log.WithError(werr).Warn("Failed to write metrics file")
		}
	}
	if err == nil {
		return nil
	}

	switch {
	case domerrors.IsInputMissing(err):
		console.InputMissing(opts.input)
	case domerrors.IsInvalidDate(err):
		console.InvalidDate()
	default:
		console.Failure(domerrors.GetUserMessage(err))
		if !domerrors.IsInvalidInput(err) {
			sentry.CaptureConversionError(ctx, err, map[string]string{"source": converter.SourceCLI})
		}
		log.WithError(err).Error("Conversion failed")
	}
	return errReported
}

func convertOnce(ctx context.Context, stdin io.Reader, console *report.Console, log *logger.Logger,
	cfg *config.Config, m *metrics.Metrics, svc *converter.Service, opts *convertOptions,
) error {
	raw, err := os.ReadFile(opts.input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domerrors.ErrInputMissing, opts.input)
		}
		return domerrors.NewWrapper("convert", "read_input").Wrapf(err, "无法读取课表文件%s", opts.input)
	}

	parsed, err := svc.Parse(ctx, raw)
	if err != nil {
		return err
	}

	start := opts.start
	if start == "" {
		console.PromptDate()
		start, err = readLine(stdin)
		if err != nil {
			return domerrors.NewWrapper("convert", "read_date").Wrap(err, "无法读取学期开始日期")
		}
	}

	res, err := svc.Render(ctx, parsed, start)
	if err != nil {
		return err
	}

	err = writeArtifacts(
		artifact{path: opts.icsPath, data: res.ICS},
		artifact{path: opts.jsonPath, data: res.SummaryJSON},
	)
	if err != nil {
		return domerrors.NewWrapper("convert", "write_output").Wrap(err, "写入输出文件失败")
	}

	console.CalendarWritten(opts.icsPath, res.EventCount())
	console.Courses(res.Summaries)
	console.SummaryWritten(opts.jsonPath)

	saveHistory(ctx, cfg, log, res)

	if opts.publish {
		keys, err := publish(ctx, cfg, log, m, res)
		if err != nil {
			return err
		}
		console.Published(keys)
	}
	return nil
}

// saveHistory records the conversion when history is enabled. Failures are
// logged; the files on disk are the primary result.
func saveHistory(ctx context.Context, cfg *config.Config, log *logger.Logger, res *converter.Result) {
	db, err := app.OpenHistory(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Warn("History unavailable")
		return
	}
	if db == nil {
		return
	}
	defer func() { _ = db.Close() }()

	if err := db.SaveConversion(ctx, res.Conversion()); err != nil {
		log.WithError(err).Warn("Failed to save conversion history")
	}
	if cfg.HistoryRetention > 0 {
		if _, err := db.DeleteConversionsBefore(ctx, time.Now().Add(-cfg.HistoryRetention)); err != nil {
			log.WithError(err).Warn("Failed to prune conversion history")
		}
	}
}

func publish(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics, res *converter.Result) ([]string, error) {
	wrap := domerrors.NewWrapper("convert", "publish")
	publisher, err := app.NewPublisher(ctx, cfg, log, m)
	if err != nil {
		return nil, wrap.Wrap(err, "初始化发布失败")
	}
	if publisher == nil {
		return nil, wrap.Wrap(domerrors.ErrPublishDisabled, "未配置R2发布")
	}

	pubCtx, cancel := context.WithTimeout(ctxutil.WithConversionID(ctx, res.ID), config.PublishUpload)
	defer cancel()
	keys, err := publisher.Publish(pubCtx, res.ID, res.ICS, res.SummaryJSON)
	if err != nil {
		return nil, wrap.Wrap(err, "发布失败")
	}
	return keys, nil
}

// readLine reads one line, accepting a final line without a newline.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
