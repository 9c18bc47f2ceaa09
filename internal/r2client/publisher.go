package r2client

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
)

// Content types of published artifacts.
const (
	ContentTypeICS  = "text/calendar; charset=utf-8"
	ContentTypeZstd = "application/zstd"
)

// Calendar clients poll subscriptions; a short max-age keeps re-published
// calendars fresh.
const cacheControlICS = "public, max-age=300"

// MetadataConversionID is the object metadata key holding the conversion ID.
const MetadataConversionID = "conversion-id"

// ObjectStore is the subset of Client used by Publisher.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
}

// Publisher uploads the artifacts of a conversion.
type Publisher struct {
	store   ObjectStore
	prefix  string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewPublisher creates a publisher writing under prefix. m may be nil.
func NewPublisher(store ObjectStore, prefix string, log *logger.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		store:   store,
		prefix:  strings.Trim(prefix, "/"),
		logger:  log,
		metrics: m,
	}
}

// ICSKey returns the object key of a conversion's calendar.
func (p *Publisher) ICSKey(id string) string {
	return path.Join(p.prefix, id+".ics")
}

// SummaryKey returns the object key of a conversion's compressed JSON summary.
func (p *Publisher) SummaryKey(id string) string {
	return path.Join(p.prefix, id+".json.zst")
}

// Publish uploads the calendar and the zstd-compressed summary in parallel
// and returns the object keys. When either upload fails, objects already
// written are deleted on a best-effort basis.
func (p *Publisher) Publish(ctx context.Context, id string, ics, summaryJSON []byte) ([]string, error) {
	start := time.Now()
	log := p.logger.WithModule("publisher").WithField("conversion_id", id)

	compressed, err := Compress(summaryJSON)
	if err != nil {
		return nil, err
	}

	meta := map[string]string{MetadataConversionID: id}
	uploads := []struct {
		kind string
		obj  Object
	}{
		{"ics", Object{Key: p.ICSKey(id), Body: ics, ContentType: ContentTypeICS, CacheControl: cacheControlICS, Metadata: meta}},
		{"summary", Object{Key: p.SummaryKey(id), Body: compressed, ContentType: ContentTypeZstd, Metadata: meta}},
	}

	done := make([]bool, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		g.Go(func() error {
			_, err := p.store.Put(gctx, u.obj)
			p.record(u.kind, err)
			if err != nil {
				var oe *Error
				if errors.As(err, &oe) && oe.Code != "" {
					log.WithField("code", oe.Code).WithField("status", oe.Status).Warn("Upload rejected")
				}
				return fmt.Errorf("publish %s: %w", u.kind, err)
			}
			done[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, u := range uploads {
			if !done[i] {
				continue
			}
			if delErr := p.store.Delete(context.WithoutCancel(ctx), u.obj.Key); delErr != nil {
				log.WithError(delErr).WithField("key", u.obj.Key).Warn("Failed to remove partial upload")
			}
		}
		log.WithError(err).Error("Publish failed")
		return nil, err
	}

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordPublishDuration(elapsed.Seconds())
	}
	keys := []string{uploads[0].obj.Key, uploads[1].obj.Key}
	log.WithFields(map[string]any{
		"keys":        keys,
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Published conversion artifacts")
	return keys, nil
}

func (p *Publisher) record(kind string, err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordPublishUpload(kind, status)
}
