package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the slice of the S3 API the store calls. *s3.Client
// satisfies it; tests substitute an in-memory fake.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store is a FileStore over an S3-compatible bucket (AWS, MinIO, R2),
// so exports can land in shared object storage instead of the local
// disk. Storage paths map to object keys under an optional key prefix.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 wraps an already configured client. Credentials, region, and
// endpoint are the caller's business; prefix may be empty.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Store) storagePath(key string) string {
	if s.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s.prefix+"/")
}

// Write buffers content in memory; Close performs a single PutObject
// with the buffered body and reports the upload result. The buffered
// body is rewindable, which keeps SDK retries working.
func (s *S3Store) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	return &putWriter{ctx: ctx, store: s, key: s.objectKey(path)}, nil
}

// Read streams the named object via GetObject.
func (s *S3Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("read %s: %w", path, os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

// List pages through ListObjectsV2 until the listing is exhausted.
// S3 returns keys in lexical order, which already matches the
// FileStore contract.
func (s *S3Store) List(ctx context.Context, prefix string) ([]Info, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.objectKey(prefix)),
	}
	var infos []Info
	for {
		out, err := s.client.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			infos = append(infos, Info{
				Path:    s.storagePath(aws.ToString(obj.Key)),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			return infos, nil
		}
		in.ContinuationToken = out.NextContinuationToken
	}
}

// putWriter collects an object body and uploads it on Close.
type putWriter struct {
	ctx   context.Context
	store *S3Store
	key   string
	buf   bytes.Buffer
	done  bool
}

func (w *putWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *putWriter) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	_, err := w.store.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.store.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buf.Bytes()),
	})
	return err
}

// notFound reports whether err means the object does not exist.
// GetObject surfaces a modeled NoSuchKey; some S3-compatible backends
// answer with a bare NotFound code instead.
func notFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}

var _ FileStore = (*S3Store)(nil)
