package archive

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"

	"StockResearch/internal/config"
	"StockResearch/internal/domain"
)

func sampleRecord(ts time.Time) domain.CallbackRecord {
	return domain.CallbackRecord{
		Timestamp: ts,
		Method:    "POST",
		URL:       "/webhook",
		Body:      map[string]any{"type": "response.completed"},
	}
}

func TestFileStoreSaveAndList(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	older := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	for _, ts := range []time.Time{older, newer} {
		if _, err := store.Save(context.Background(), sampleRecord(ts)); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	if err := os.Chtimes(filepath.Join(dir, sampleRecord(older).Filename()), older, older); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %+v", files)
	}
	if files[0].Filename != "webhook-data-2025-07-01T10-01-00-000Z.json" {
		t.Fatalf("expected newest first, got %+v", files)
	}

	raw, err := os.ReadFile(filepath.Join(dir, files[0].Filename))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded domain.CallbackRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored file is not JSON: %v", err)
	}
	if decoded.Method != "POST" || store.Location() != dir {
		t.Fatalf("unexpected record %+v at %s", decoded, store.Location())
	}
}

type memoryObjects struct {
	objects map[string][]byte
	stamps  map[string]time.Time
}

func (m *memoryObjects) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.StringValue(in.Key)
	m.objects[key] = body
	m.stamps[key] = time.Date(2025, 7, 1, 0, len(m.objects), 0, 0, time.UTC)
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryObjects) ListObjectsV2PagesWithContext(_ aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	page := &s3.ListObjectsV2Output{}
	for key, body := range m.objects {
		page.Contents = append(page.Contents, &s3.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(body))),
			LastModified: aws.Time(m.stamps[key]),
		})
	}
	fn(page, true)
	return nil
}

func TestS3StoreSaveAndList(t *testing.T) {
	t.Parallel()

	api := &memoryObjects{objects: map[string][]byte{}, stamps: map[string]time.Time{}}
	store := NewS3Store(api, config.S3Config{Bucket: "callbacks", Prefix: "webhooks/"})

	first := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{first, first.Add(time.Second)} {
		if _, err := store.Save(context.Background(), sampleRecord(ts)); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	if _, ok := api.objects["webhooks/webhook-data-2025-07-01T09-00-00-000Z.json"]; !ok {
		t.Fatalf("object not stored under prefix: %v", api.objects)
	}

	files, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(files) != 2 || files[0].Filename != "webhook-data-2025-07-01T09-00-01-000Z.json" {
		t.Fatalf("unexpected listing %+v", files)
	}
	if store.Location() != "s3://callbacks/webhooks/" {
		t.Fatalf("unexpected location %s", store.Location())
	}
}
