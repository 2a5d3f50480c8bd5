package s3kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/keyvalue"
)

// Config describes the bucket and how to reach it.
type Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"` // MinIO, Localstack and friends
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
}

// API is the subset of *s3.Client the map uses.
type API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Map implements keyvalue.Map on top of an S3 bucket.
type Map struct {
	client API
	bucket string
	prefix string
}

var _ keyvalue.Map = (*Map)(nil)

// NewClient builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// New returns a map over bucket. keyPrefix, when set, namespaces every
// object the map touches.
func New(client API, bucket, keyPrefix string) (*Map, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3: %w: bucket is required", drivedav.ErrInvalidInput)
	}
	keyPrefix = strings.Trim(keyPrefix, "/")
	if keyPrefix != "" {
		keyPrefix += "/"
	}
	return &Map{client: client, bucket: bucket, prefix: keyPrefix}, nil
}

// Open builds a client from cfg and verifies the bucket is reachable.
func Open(ctx context.Context, cfg Config) (*Map, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	m, err := New(client, cfg.Bucket, cfg.KeyPrefix)
	if err != nil {
		return nil, err
	}
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("s3: bucket %q not accessible: %w", cfg.Bucket, err)
	}
	return m, nil
}

func (m *Map) objectKey(key string) string { return m.prefix + key }
func (m *Map) markerKey(key string) string { return m.prefix + key + "/" }

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

func (m *Map) head(ctx context.Context, objKey string) (*s3.HeadObjectOutput, error) {
	return m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(objKey),
	})
}

func (m *Map) Get(ctx context.Context, key string) (keyvalue.Record, error) {
	out, err := m.head(ctx, m.objectKey(key))
	if err == nil {
		return keyvalue.Record{
			Key:     key,
			Kind:    drivedav.KindFile,
			Size:    aws.ToInt64(out.ContentLength),
			ModTime: aws.ToTime(out.LastModified),
		}, nil
	}
	if !isNotFound(err) {
		return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, err)
	}

	out, err = m.head(ctx, m.markerKey(key))
	if isNotFound(err) {
		return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, drivedav.ErrNotFound)
	}
	if err != nil {
		return keyvalue.Record{}, fmt.Errorf("get %q: %w", key, err)
	}
	return keyvalue.Record{
		Key:     key,
		Kind:    drivedav.KindCollection,
		ModTime: aws.ToTime(out.LastModified),
	}, nil
}

func (m *Map) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(m.objectKey(key)),
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("load %q: %w", key, drivedav.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return data, nil
}

func (m *Map) Put(ctx context.Context, rec keyvalue.Record, content []byte) error {
	objKey, staleKey := m.objectKey(rec.Key), m.markerKey(rec.Key)
	if rec.Kind == drivedav.KindCollection {
		objKey, staleKey = staleKey, objKey
		content = nil
	}

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(objKey),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", rec.Key, err)
	}

	// A key changing kind leaves the other representation behind.
	if err := m.deleteObject(ctx, staleKey); err != nil {
		return fmt.Errorf("put %q: %w", rec.Key, err)
	}
	return nil
}

func (m *Map) deleteObject(ctx context.Context, objKey string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(objKey),
	})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func (m *Map) Delete(ctx context.Context, key string) error {
	rec, err := m.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	objKey := m.objectKey(key)
	if rec.Kind == drivedav.KindCollection {
		objKey = m.markerKey(key)
	}
	if err := m.deleteObject(ctx, objKey); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (m *Map) Scan(ctx context.Context, prefix string) ([]keyvalue.Record, error) {
	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(m.prefix + prefix),
	})

	var recs []keyvalue.Record
	for paginator.HasMorePages() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %q: %w", prefix, err)
		}

		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), m.prefix)
			rec := keyvalue.Record{
				Key:     key,
				Kind:    drivedav.KindFile,
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			}
			if strings.HasSuffix(key, "/") {
				rec.Key = strings.TrimSuffix(key, "/")
				rec.Kind = drivedav.KindCollection
				rec.Size = 0
			}
			if rec.Key == "" || !strings.HasPrefix(rec.Key, prefix) {
				continue
			}
			recs = append(recs, rec)
		}
	}

	// Marker objects sort by their trailing slash in S3; callers expect
	// plain key order.
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}
