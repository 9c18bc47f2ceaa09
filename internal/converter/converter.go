// Package converter runs the timetable pipeline end to end and renders its
// artifacts. It is shared by the CLI and the HTTP server.
package converter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyellow/kebiao-ics/internal/calendar"
	"github.com/garyellow/kebiao-ics/internal/ctxutil"
	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
	"github.com/garyellow/kebiao-ics/internal/report"
	"github.com/garyellow/kebiao-ics/internal/storage"
	"github.com/garyellow/kebiao-ics/internal/textutil"
	"github.com/garyellow/kebiao-ics/internal/timetable"
)

// ModuleName is the log module of the converter.
const ModuleName = "converter"

// Conversion sources and statuses used as metric labels.
const (
	SourceCLI  = "cli"
	SourceHTTP = "http"

	StatusSuccess      = "success"
	StatusInvalidInput = "invalid_input"
	StatusInvalidDate  = "invalid_date"
	StatusError        = "error"
)

// User-facing messages.
const (
	msgInvalidInput = "课表内容无法识别"
	msgInvalidDate  = "日期格式错误，请使用YYYY-MM-DD格式"
	msgRender       = "生成日历失败"
)

// Options configures a Service.
type Options struct {
	Tables       *timetable.Tables // nil selects timetable.DefaultTables
	CalendarName string
	ReminderLead time.Duration
	Now          func() time.Time
}

// Service converts timetable text into calendar and summary artifacts.
type Service struct {
	parser  *timetable.Parser
	tables  *timetable.Tables
	opts    Options
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// New creates a converter. m may be nil.
func New(log *logger.Logger, m *metrics.Metrics, opts Options) *Service {
	if opts.Tables == nil {
		opts.Tables = timetable.DefaultTables()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		parser:  timetable.NewParser(opts.Tables),
		tables:  opts.Tables,
		opts:    opts,
		logger:  log,
		metrics: m,
	}
}

// Parsed is the timetable after segmentation and field extraction.
type Parsed struct {
	Text         string
	Encoding     string
	SourceSHA256 string
	Courses      []timetable.Course
	Stats        timetable.ParseStats

	elapsed time.Duration
}

// Result holds every artifact of one conversion.
type Result struct {
	ID            string
	CreatedAt     time.Time
	SemesterStart time.Time
	SourceSHA256  string
	Encoding      string

	Courses   []timetable.Course
	Summaries []report.CourseSummary
	Instances []timetable.Instance

	ICS         []byte
	SummaryJSON []byte

	Stats      timetable.ParseStats
	Duplicates int
	Reminders  timetable.ReminderStats
}

// EventCount is the number of calendar events.
func (r *Result) EventCount() int {
	return len(r.Instances)
}

// Conversion returns the history record of the result.
func (r *Result) Conversion() *storage.Conversion {
	return &storage.Conversion{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		SemesterStart: r.SemesterStart.Format(timetable.DateLayout),
		SourceSHA256:  r.SourceSHA256,
		CourseCount:   len(r.Courses),
		EventCount:    len(r.Instances),
		ICS:           r.ICS,
		SummaryJSON:   r.SummaryJSON,
	}
}

// Request is a complete conversion input.
type Request struct {
	Raw           []byte
	SemesterStart string
}

// Convert parses req.Raw and renders it for req.SemesterStart.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	parsed, err := s.Parse(ctx, req.Raw)
	if err != nil {
		return nil, err
	}
	return s.Render(ctx, parsed, req.SemesterStart)
}

// Parse decodes raw input (UTF-8, GB18030 or an HTML export) and extracts
// courses. It fails only when the input is empty or undecodable.
func (s *Service) Parse(ctx context.Context, raw []byte) (*Parsed, error) {
	start := time.Now()
	log := s.log(ctx)
	wrap := domerrors.NewWrapper(ModuleName, "parse")

	text, encoding, err := textutil.Decode(raw)
	if err == nil && textutil.LooksLikeHTML(text) {
		text, err = textutil.FromHTML(strings.NewReader(text))
	}
	if err != nil {
		s.recordFailure(ctx, StatusInvalidInput, time.Since(start))
		log.WithError(err).Warn("Rejected timetable input")
		return nil, wrap.Wrap(err, msgInvalidInput)
	}

	sum := sha256.Sum256(raw)
	result := s.parser.Parse(text)

	log.WithFields(map[string]any{
		"encoding":        encoding,
		"blocks":          result.Stats.Blocks,
		"courses_kept":    result.Stats.CoursesKept,
		"courses_dropped": result.Stats.CoursesDropped,
		"dropped":         result.Stats.Dropped,
	}).Debug("Parsed timetable")
	if len(result.Courses) == 0 {
		log.Warn("No course could be extracted from the timetable")
	}

	return &Parsed{
		Text:         text,
		Encoding:     encoding,
		SourceSHA256: hex.EncodeToString(sum[:]),
		Courses:      result.Courses,
		Stats:        result.Stats,
		elapsed:      time.Since(start),
	}, nil
}

// Render expands parsed courses from the given semester start and renders the
// ICS and JSON artifacts.
func (s *Service) Render(ctx context.Context, p *Parsed, semesterStart string) (*Result, error) {
	start := time.Now()
	log := s.log(ctx)

	date, err := timetable.ParseSemesterStart(semesterStart)
	if err != nil {
		s.recordFailure(ctx, StatusInvalidDate, p.elapsed+time.Since(start))
		log.WithField("semester_start", semesterStart).Warn("Invalid semester start")
		return nil, domerrors.NewWrapper(ModuleName, "parse_date").Wrap(err, msgInvalidDate)
	}

	id := newID()
	ctx = ctxutil.WithConversionID(ctx, id)
	log = s.log(ctx)

	wrap := domerrors.NewWrapper(ModuleName, "render")
	expanded, err := timetable.Expand(ctx, p.Courses, timetable.FirstMonday(date), s.tables)
	if err != nil {
		s.recordFailure(ctx, StatusError, p.elapsed+time.Since(start))
		return nil, wrap.Wrap(err, msgRender)
	}
	instances := expanded.Instances
	occupancy := timetable.DailyOccupancy(instances, s.tables)
	reminders := timetable.ApplyReminders(instances, occupancy, s.tables)

	var ics bytes.Buffer
	err = calendar.Write(&ics, instances, calendar.Options{
		Name:         s.opts.CalendarName,
		ReminderLead: s.opts.ReminderLead,
		Now:          s.opts.Now,
	})
	if err != nil {
		s.recordFailure(ctx, StatusError, p.elapsed+time.Since(start))
		return nil, wrap.Wrap(err, msgRender)
	}

	summaries := report.SummarizeAll(p.Courses)
	summaryJSON, err := report.MarshalJSON(summaries)
	if err != nil {
		s.recordFailure(ctx, StatusError, p.elapsed+time.Since(start))
		return nil, wrap.Wrap(err, msgRender)
	}

	res := &Result{
		ID:            id,
		CreatedAt:     s.opts.Now(),
		SemesterStart: date,
		SourceSHA256:  p.SourceSHA256,
		Encoding:      p.Encoding,
		Courses:       p.Courses,
		Summaries:     summaries,
		Instances:     instances,
		ICS:           ics.Bytes(),
		SummaryJSON:   summaryJSON,
		Stats:         p.Stats,
		Duplicates:    expanded.Duplicates,
		Reminders:     reminders,
	}

	elapsed := p.elapsed + time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordConversion(source(ctx), StatusSuccess, elapsed.Seconds())
		s.metrics.RecordParseOutcome(metrics.ParseOutcome{
			Blocks:              p.Stats.Blocks,
			CoursesKept:         p.Stats.CoursesKept,
			CoursesDropped:      p.Stats.CoursesDropped,
			Dropped:             p.Stats.Dropped,
			Events:              len(instances),
			Duplicates:          expanded.Duplicates,
			RemindersAttached:   reminders.Attached,
			RemindersSuppressed: reminders.Suppressed,
		})
	}

	log.WithFields(map[string]any{
		"semester_start": date.Format(timetable.DateLayout),
		"courses":        len(p.Courses),
		"events":         len(instances),
		"duplicates":     expanded.Duplicates,
		"reminders":      reminders.Attached,
		"duration_ms":    elapsed.Milliseconds(),
	}).Info("Conversion completed")

	return res, nil
}

func (s *Service) log(ctx context.Context) *logger.Logger {
	log := s.logger.WithModule(ModuleName).WithField("source", source(ctx))
	if id := ctxutil.GetConversionID(ctx); id != "" {
		log = log.WithField("conversion_id", id)
	}
	if rid, ok := ctxutil.GetRequestID(ctx); ok {
		log = log.WithField("request_id", rid)
	}
	return log
}

func (s *Service) recordFailure(ctx context.Context, status string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordConversion(source(ctx), status, elapsed.Seconds())
	}
}

func source(ctx context.Context) string {
	if src := ctxutil.GetSource(ctx); src != "" {
		return src
	}
	return SourceCLI
}

// newID returns a time-ordered conversion ID so that history sorts naturally.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
