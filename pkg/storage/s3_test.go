package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// apiError fakes an un-modeled service error with a bare code.
type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var fakeModTime = time.Date(2026, 8, 21, 10, 30, 0, 0, time.UTC)

// fakeS3 keeps objects in a map and paginates listings like the real
// service, resuming after the continuation token in key order.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte

	pageSize  int // keys per ListObjectsV2 page, 0 for everything
	listCalls int

	getErr  error
	putErr  error
	listErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) put(key, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = []byte(data)
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		start = len(keys)
		for i, k := range keys {
			if k > tok {
				start = i
				break
			}
		}
	}
	end := len(keys)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(int64(len(f.objects[k]))),
			LastModified: aws.Time(fakeModTime),
		})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end-1])
	}
	return out, nil
}

func TestS3RoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "bucket", "")
	ctx := context.Background()

	const data = "# 🎯 Agentic Planning Response\n"
	if err := WriteFile(ctx, store, "reports/plan.md", []byte(data)); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(ctx, store, "reports/plan.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != data {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestS3UploadOnClose(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "bucket", "")

	w, err := store.Write(context.Background(), "state/snapshot.msgpack")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "snapshot"); err != nil {
		t.Fatal(err)
	}
	if fake.has("state/snapshot.msgpack") {
		t.Fatal("object uploaded before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !fake.has("state/snapshot.msgpack") {
		t.Fatal("object missing after Close")
	}
}

func TestS3UploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("upload failed")
	store := NewS3(fake, "bucket", "")

	w, err := store.Write(context.Background(), "obj")
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(w, "data")
	if err := w.Close(); err == nil || err.Error() != "upload failed" {
		t.Fatalf("Close = %v, want upload failed", err)
	}
}

func TestS3ReadMissing(t *testing.T) {
	store := NewS3(newFakeS3(), "bucket", "")

	_, err := store.Read(context.Background(), "missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error should name the path: %v", err)
	}
}

func TestS3ReadOtherError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("network timeout")
	store := NewS3(fake, "bucket", "")

	_, err := store.Read(context.Background(), "x")
	if err == nil || errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want the raw error, got %v", err)
	}
}

func TestS3KeyPrefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "bucket", "muse/exports")
	ctx := context.Background()

	if err := WriteFile(ctx, store, "reports/think.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !fake.has("muse/exports/reports/think.md") {
		t.Fatal("object not stored under the key prefix")
	}

	// Listings come back as storage paths, prefix stripped.
	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Path != "reports/think.md" {
		t.Fatalf("unexpected listing: %v", infos)
	}
}

func TestS3Overwrite(t *testing.T) {
	store := NewS3(newFakeS3(), "bucket", "")
	ctx := context.Background()

	if err := WriteFile(ctx, store, "f", []byte("long content here")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(ctx, store, "f", []byte("short")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(ctx, store, "f")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "short" {
		t.Fatalf("got %q, want %q", got, "short")
	}
}

func TestS3List(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "bucket", "")
	ctx := context.Background()

	fake.put("reports/a.md", "aa")
	fake.put("reports/b.md", "b")
	fake.put("state/snapshot.msgpack", "s")

	reports, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Path != "reports/a.md" || reports[1].Path != "reports/b.md" {
		t.Fatalf("unexpected order: %v", reports)
	}
	if reports[0].Size != 2 || !reports[0].ModTime.Equal(fakeModTime) {
		t.Fatalf("reports[0] = %+v", reports[0])
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d objects, want 3", len(all))
	}
}

func TestS3ListPagination(t *testing.T) {
	fake := newFakeS3()
	fake.pageSize = 2
	store := NewS3(fake, "bucket", "")

	for _, k := range []string{"e/1", "e/2", "e/3", "e/4", "e/5"} {
		fake.put(k, "x")
	}

	infos, err := store.List(context.Background(), "e/")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 5 {
		t.Fatalf("got %d objects, want 5", len(infos))
	}
	for i, info := range infos {
		if want := fmt.Sprintf("e/%d", i+1); info.Path != want {
			t.Fatalf("infos[%d].Path = %q, want %q", i, info.Path, want)
		}
	}
	if fake.listCalls < 3 {
		t.Fatalf("listCalls = %d, want pagination across >= 3 pages", fake.listCalls)
	}
}

func TestS3ListError(t *testing.T) {
	fake := newFakeS3()
	fake.listErr = errors.New("access denied")
	store := NewS3(fake, "bucket", "")

	if _, err := store.List(context.Background(), ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"modeled NoSuchKey", &types.NoSuchKey{}, true},
		{"wrapped NoSuchKey", fmt.Errorf("get: %w", &types.NoSuchKey{}), true},
		{"bare NotFound code", &apiError{code: "NotFound"}, true},
		{"bare NoSuchKey code", &apiError{code: "NoSuchKey"}, true},
		{"access denied", &apiError{code: "AccessDenied"}, false},
		{"plain error", errors.New("timeout"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notFound(tt.err); got != tt.want {
				t.Fatalf("notFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
