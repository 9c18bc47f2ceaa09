package r2client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeR2 is a minimal path-style S3 endpoint. Keys under /denied/ are
// rejected with AccessDenied.
type fakeR2 struct {
	mu      sync.Mutex
	headers map[string]http.Header
	deleted []string
}

func newFakeR2() *fakeR2 {
	return &fakeR2{headers: map[string]http.Header{}}
}

func (f *fakeR2) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r.Body)

	if strings.Contains(r.URL.Path, "/denied/") {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`)
		return
	}

	switch r.Method {
	case http.MethodPut:
		f.headers[r.URL.Path] = r.Header.Clone()
		w.Header().Set("ETag", `"etag-1"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, f *fakeR2) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		Endpoint:    srv.URL,
		AccessKeyID: "key",
		SecretKey:   "secret",
		BucketName:  "calendars",
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresAllFields(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Endpoint: "http://x", BucketName: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key id, secret key")
	assert.NotContains(t, err.Error(), "bucket")
}

func TestClient_PutDelete(t *testing.T) {
	t.Parallel()
	f := newFakeR2()
	c := newTestClient(t, f)
	ctx := context.Background()

	etag, err := c.Put(ctx, Object{
		Key:          "kebiao/a.ics",
		Body:         []byte("BEGIN:VCALENDAR"),
		ContentType:  ContentTypeICS,
		CacheControl: "public, max-age=300",
		Metadata:     map[string]string{MetadataConversionID: "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)

	f.mu.Lock()
	h, stored := f.headers["/calendars/kebiao/a.ics"]
	f.mu.Unlock()
	require.True(t, stored, "path-style key expected")
	assert.Equal(t, ContentTypeICS, h.Get("Content-Type"))
	assert.Equal(t, "public, max-age=300", h.Get("Cache-Control"))
	assert.Equal(t, "abc", h.Get("X-Amz-Meta-Conversion-Id"))

	require.NoError(t, c.Delete(ctx, "kebiao/a.ics"))
	f.mu.Lock()
	assert.Equal(t, []string{"/calendars/kebiao/a.ics"}, f.deleted)
	f.mu.Unlock()
}

func TestClient_PutRejected(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, newFakeR2())

	_, err := c.Put(context.Background(), Object{Key: "denied/a.ics", Body: []byte("x")})
	require.Error(t, err)

	var oe *Error
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "put", oe.Op)
	assert.Equal(t, "denied/a.ics", oe.Key)
	assert.Equal(t, "AccessDenied", oe.Code)
	assert.Equal(t, http.StatusForbidden, oe.Status)
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()
	data := []byte(strings.Repeat(`{"name":"Algorithms","teachers":"张老师"}`, 200))

	compressed, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := Decompress(strings.NewReader(string(compressed)))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestDecompress_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Decompress(strings.NewReader("not zstd"))
	assert.Error(t, err)
}
