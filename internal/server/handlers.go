package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/kebiao-ics/internal/buildinfo"
	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/converter"
	"github.com/garyellow/kebiao-ics/internal/ctxutil"
	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
	"github.com/garyellow/kebiao-ics/internal/report"
	"github.com/garyellow/kebiao-ics/internal/sentry"
)

// Response formats of POST /api/convert.
const (
	FormatJSON = "json"
	FormatICS  = "ics"
)

const contentTypeICS = "text/calendar; charset=utf-8"

// Metric error types.
const (
	errTypeInvalidInput = "invalid_input"
	errTypeTooLarge     = "too_large"
	errTypeNotFound     = "not_found"
	errTypeRateLimited  = "rate_limited"
	errTypeTimeout      = "timeout"
	errTypeInternal     = "internal"
)

type convertRequest struct {
	Text          string `json:"text"`
	SemesterStart string `json:"semester_start"`
	Format        string `json:"format"`
	Publish       bool   `json:"publish"`
}

type convertResponse struct {
	ID            string                 `json:"id"`
	SemesterStart string                 `json:"semester_start"`
	CourseCount   int                    `json:"course_count"`
	EventCount    int                    `json:"event_count"`
	Reminders     int                    `json:"reminders"`
	Courses       []report.CourseSummary `json:"courses"`
	CalendarURL   string                 `json:"calendar_url,omitempty"`
	Published     []string               `json:"published,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":     "ok",
		"version":    buildinfo.DisplayVersion(),
		"history":    s.history != nil,
		"publishing": s.publisher != nil,
	}
	if s.history != nil {
		if err := s.history.Ping(c.Request.Context()); err != nil {
			s.logger.WithError(err).Warn("Health check: database unavailable")
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
	}
	c.JSON(status, body)
}

func (s *Server) convert(c *gin.Context) {
	const route = "/api/convert"

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	req, err := s.bindConvertRequest(c)
	if err != nil {
		s.respondError(c, route, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatICS {
		s.respondError(c, route, domerrors.NewWrapper("server", "bind").
			Wrapf(domerrors.ErrInvalidInput, "不支持的格式：%s", req.Format))
		return
	}
	if req.Publish && s.publisher == nil {
		s.respondError(c, route, domerrors.NewWrapper("server", "publish").
			Wrap(domerrors.ErrPublishDisabled, "服务器未配置发布"))
		return
	}

	ctx, cancel := context.WithTimeout(ctxutil.WithSource(c.Request.Context(), converter.SourceHTTP), config.ConvertRequest)
	defer cancel()

	res, err := s.converter.Convert(ctx, converter.Request{Raw: []byte(req.Text), SemesterStart: req.SemesterStart})
	if err != nil {
		s.respondError(c, route, err)
		return
	}
	c.Header("X-Conversion-ID", res.ID)

	resp := convertResponse{
		ID:            res.ID,
		SemesterStart: res.SemesterStart.Format("2006-01-02"),
		CourseCount:   len(res.Courses),
		EventCount:    res.EventCount(),
		Reminders:     res.Reminders.Attached,
		Courses:       res.Summaries,
	}

	if s.history != nil {
		if err := s.history.SaveConversion(ctx, res.Conversion()); err != nil {
			s.logger.WithError(err).WithField("conversion_id", res.ID).Error("Failed to save conversion")
		} else {
			resp.CalendarURL = "/api/conversions/" + res.ID + "/calendar.ics"
		}
	}

	if req.Publish {
		// detached so that a client disconnect does not abort half-written uploads
		pubCtx, pubCancel := context.WithTimeout(
			ctxutil.WithConversionID(ctxutil.PreserveTracing(ctx), res.ID), config.PublishUpload)
		keys, err := s.publisher.Publish(pubCtx, res.ID, res.ICS, res.SummaryJSON)
		pubCancel()
		if err != nil {
			s.respondError(c, route, domerrors.NewWrapper("server", "publish").Wrap(err, "发布失败"))
			return
		}
		resp.Published = keys
	}

	if format == FormatICS {
		c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
		c.Data(http.StatusOK, contentTypeICS, res.ICS)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindConvertRequest reads a JSON body or a multipart form with a "file" part.
func (s *Server) bindConvertRequest(c *gin.Context) (convertRequest, error) {
	wrap := domerrors.NewWrapper("server", "bind")

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				return convertRequest{}, err
			}
			return convertRequest{}, wrap.Wrap(fmt.Errorf("%w: %v", domerrors.ErrInvalidInput, err), "缺少课表文件")
		}
		f, err := fh.Open()
		if err != nil {
			return convertRequest{}, fmt.Errorf("open upload: %w", err)
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			return convertRequest{}, fmt.Errorf("read upload: %w", err)
		}
		publish, _ := strconv.ParseBool(c.PostForm("publish"))
		return convertRequest{
			Text:          string(data),
			SemesterStart: c.PostForm("semester_start"),
			Format:        c.PostForm("format"),
			Publish:       publish,
		}, nil
	}

	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isTooLarge(err) {
			return convertRequest{}, err
		}
		return convertRequest{}, wrap.Wrap(fmt.Errorf("%w: %v", domerrors.ErrInvalidInput, err), "请求格式错误")
	}
	return req, nil
}

func (s *Server) listConversions(c *gin.Context) {
	limit := config.DefaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(c, "/api/conversions", domerrors.NewWrapper("server", "list").
				Wrapf(domerrors.ErrInvalidInput, "无效的 limit：%s", v))
			return
		}
		limit = min(n, config.MaxHistoryLimit)
	}

	list, err := s.history.ListConversions(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, "/api/conversions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversions": list})
}

func (s *Server) conversionCalendar(c *gin.Context) {
	conv, err := s.history.GetConversion(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "/api/conversions/:id/calendar.ics", err)
		return
	}
	c.Data(http.StatusOK, contentTypeICS, conv.ICS)
}

func (s *Server) conversionSummary(c *gin.Context) {
	conv, err := s.history.GetConversion(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "/api/conversions/:id/summary.json", err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", conv.SummaryJSON)
}

// respondError maps err to a status code and a user-facing message.
func (s *Server) respondError(c *gin.Context, route string, err error) {
	status, errType := http.StatusInternalServerError, errTypeInternal
	msg := "服务器内部错误"

	switch {
	case isTooLarge(err):
		status, errType, msg = http.StatusRequestEntityTooLarge, errTypeTooLarge, "请求内容过大"
	case domerrors.IsInvalidInput(err), domerrors.IsInvalidDate(err), errors.Is(err, domerrors.ErrPublishDisabled):
		status, errType, msg = http.StatusBadRequest, errTypeInvalidInput, domerrors.GetUserMessage(err)
	case domerrors.IsNotFound(err):
		status, errType, msg = http.StatusNotFound, errTypeNotFound, "记录不存在"
	case errors.Is(err, context.DeadlineExceeded):
		status, errType, msg = http.StatusServiceUnavailable, errTypeTimeout, "处理超时，请稍后再试"
	default:
		sentry.CaptureConversionError(c.Request.Context(), err, map[string]string{"route": route})
		_ = c.Error(err)
	}

	if s.metrics != nil {
		s.metrics.RecordHTTPError(errType, route)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
