// Package s3 implements the slot medium on an S3-compatible backend (AWS S3
// or MinIO). Each slot maps to one object; the write token travels as user
// metadata so watchers can poll HeadObject without fetching the document.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"catalogcore/internal/slot"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const (
	tokenMetadataKey    = "slot-token"
	defaultPollInterval = time.Second
)

// Store is an S3-backed slot handle scoped to a single bucket.
type Store struct {
	client   *awss3.Client
	bucket   string
	interval time.Duration

	mu  sync.Mutex
	own map[string]string
}

var _ slot.Store = (*Store)(nil)

// Config holds explicit construction parameters (mostly for tests). For
// production the environment is the primary source.
type Config struct {
	Region       string
	Bucket       string
	Endpoint     string // optional; enables a custom endpoint (e.g. MinIO)
	PathStyle    bool
	PollInterval time.Duration
}

// New creates an S3 slot store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Store{client: client, bucket: cfg.Bucket, interval: interval, own: make(map[string]string)}, nil
}

// OpenFromEnv constructs an S3 slot store from process environment.
//
//	CATALOGCORE_SLOT_S3_BUCKET=<bucket> (required)
//	CATALOGCORE_SLOT_S3_REGION=<region> (default us-east-1)
//	CATALOGCORE_SLOT_S3_ENDPOINT=<url> (optional, for MinIO)
//	CATALOGCORE_SLOT_S3_PATH_STYLE=true|false (default false)
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("CATALOGCORE_SLOT_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("CATALOGCORE_SLOT_S3_BUCKET required for s3 driver")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("CATALOGCORE_SLOT_S3_REGION"),
		Endpoint:  os.Getenv("CATALOGCORE_SLOT_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("CATALOGCORE_SLOT_S3_PATH_STYLE"), "true"),
	})
}

func (s *Store) Driver() slot.Driver { return slot.DriverS3 }

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

// Load returns the slot document.
func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{Bucket: &s.bucket, Key: &name})
	if err != nil {
		if isNotFound(err) {
			return nil, slot.ErrNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", name, err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", name, err)
	}
	return data, nil
}

// Save replaces the slot object with a fresh write token.
func (s *Store) Save(ctx context.Context, name string, payload []byte) error {
	token := uuid.NewString()
	contentType := "application/json"
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &name,
		Body:        bytes.NewReader(payload),
		ContentType: &contentType,
		Metadata:    map[string]string{tokenMetadataKey: token},
	})
	if err != nil {
		return fmt.Errorf("put slot %s: %w", name, err)
	}
	s.mu.Lock()
	s.own[name] = token
	s.mu.Unlock()
	return nil
}

func (s *Store) readToken(ctx context.Context, name string) string {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{Bucket: &s.bucket, Key: &name})
	if err != nil {
		return ""
	}
	return out.Metadata[tokenMetadataKey]
}

// Watch polls the object's token metadata and emits an event when it
// changes to a value this handle did not write.
func (s *Store) Watch(ctx context.Context, name string) (<-chan slot.Event, func(), error) {
	ch := make(chan slot.Event, 8)
	done := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(ch)
		lastSeen := s.readToken(ctx, name)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				token := s.readToken(ctx, name)
				if token == "" || token == lastSeen {
					continue
				}
				lastSeen = token
				s.mu.Lock()
				own := s.own[name]
				s.mu.Unlock()
				if token == own {
					continue
				}
				select {
				case ch <- slot.Event{Slot: name}:
				default:
				}
			}
		}
	}()
	return ch, stop, nil
}

// Close is a no-op; the SDK client holds no resources needing release.
func (s *Store) Close() error { return nil }
