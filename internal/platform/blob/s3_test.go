package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	respond := func(status int, body string, header http.Header) *http.Response {
		if header == nil {
			header = http.Header{}
		}
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: header, Request: req}
	}
	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		prefix := req.URL.Query().Get("prefix")
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString(`</ListBucketResult>`)
		return respond(http.StatusOK, b.String(), http.Header{"Content-Type": {"application/xml"}}), nil
	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		f.types[key] = req.Header.Get("Content-Type")
		return respond(http.StatusOK, "", http.Header{"Etag": {`"etag"`}}), nil
	case req.Method == http.MethodHead || req.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, "", nil), nil
		}
		header := http.Header{
			"Content-Length": {fmt.Sprint(len(body))},
			"Content-Type":   {f.types[key]},
			"Last-Modified":  {"Mon, 01 Jan 2024 00:00:00 GMT"},
		}
		if req.Method == http.MethodHead {
			return respond(http.StatusOK, "", header), nil
		}
		resp := respond(http.StatusOK, "", header)
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
		return resp, nil
	}
	return respond(http.StatusNotImplemented, "", nil), nil
}

func newFakeS3Store(t *testing.T) (*S3, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	store, err := NewS3(context.Background(), S3Config{
		Bucket:    "reports",
		Region:    "us-east-1",
		Endpoint:  "http://s3.mock.local",
		PathStyle: true,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.Credentials = credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	require.NoError(t, err)
	return store, fake
}

func TestS3PutGetList(t *testing.T) {
	store, fake := newFakeS3Store(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "valuations/2024-01-02.xlsx", bytes.NewReader([]byte("sheet")), ContentTypeXLSX)
	require.NoError(t, err)
	require.Equal(t, int64(5), info.Size)
	require.Equal(t, ContentTypeXLSX, fake.types["valuations/2024-01-02.xlsx"])

	rc, _, err := store.Get(ctx, "valuations/2024-01-02.xlsx")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "sheet", string(body))

	list, err := store.List(ctx, "valuations/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, DriverS3, store.Driver())
}

func TestS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	require.Error(t, err)
}

func TestS3MissingKey(t *testing.T) {
	store, _ := newFakeS3Store(t)
	_, _, err := store.Get(context.Background(), "valuations/none.xlsx")
	require.ErrorIs(t, err, ErrNotFound)
}
