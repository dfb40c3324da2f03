package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// MockBackend is an in-memory fake S3 bucket shared by mock stores. Two
// stores on the same backend model two processes sharing a bucket.
type MockBackend struct {
	mu    sync.Mutex
	state map[string]mockObj
}

type mockObj struct {
	body  []byte
	token string
}

// NewMockBackend returns an empty fake bucket.
func NewMockBackend() *MockBackend {
	return &MockBackend{state: make(map[string]mockObj)}
}

// NewMockForTests returns a Store backed by an in-memory fake HTTP
// transport. Only the Head/Get/Put operations the slot contract needs are
// implemented.
func NewMockForTests(backend *MockBackend, pollInterval time.Duration) *Store {
	rt := &mockRoundTripper{backend: backend}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{client: client, bucket: "mock-bucket", interval: pollInterval, own: make(map[string]string)}
}

type mockRoundTripper struct {
	backend *MockBackend
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()

	switch req.Method {
	case http.MethodHead:
		obj, ok := m.backend.state[key]
		if !ok {
			return notFoundResponse(req, false), nil
		}
		return objResponse(req, obj, false), nil
	case http.MethodGet:
		obj, ok := m.backend.state[key]
		if !ok {
			return notFoundResponse(req, true), nil
		}
		return objResponse(req, obj, true), nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		m.backend.state[key] = mockObj{body: body, token: req.Header.Get("X-Amz-Meta-Slot-Token")}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     http.Header{"ETag": {`"etag"`}},
			Request:    req,
		}, nil
	default:
		return &http.Response{
			StatusCode: http.StatusMethodNotAllowed,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     http.Header{},
			Request:    req,
		}, nil
	}
}

func objResponse(req *http.Request, obj mockObj, withBody bool) *http.Response {
	header := http.Header{
		"Content-Type":   {"application/json"},
		"Content-Length": {strconv.Itoa(len(obj.body))},
		"ETag":           {`"etag"`},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	}
	if obj.token != "" {
		header.Set("X-Amz-Meta-Slot-Token", obj.token)
	}
	body := io.NopCloser(bytes.NewReader(nil))
	if withBody {
		body = io.NopCloser(bytes.NewReader(obj.body))
	}
	return &http.Response{StatusCode: http.StatusOK, Body: body, Header: header, Request: req}
}

func notFoundResponse(req *http.Request, withBody bool) *http.Response {
	header := http.Header{"Content-Type": {"application/xml"}}
	body := io.NopCloser(bytes.NewReader(nil))
	if withBody {
		body = io.NopCloser(strings.NewReader(`<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: body, Header: header, Request: req}
}
