package attemptlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"docextract/internal/domain"
	"docextract/internal/port"
)

var keyReplacer = strings.NewReplacer("/", "_", ":", "_", " ", "_")

// Archive mirrors each attempt record as its own object in a bucket.
type Archive struct {
	store  port.ObjectStorage
	bucket string
	prefix string
}

// NewArchive creates an Archive writing under prefix in bucket.
func NewArchive(store port.ObjectStorage, bucket, prefix string) *Archive {
	return &Archive{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (a *Archive) Append(ctx context.Context, rec domain.LogRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding attempt record: %w", err)
	}

	key := a.Key(rec)
	_, err = a.store.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
		Size:        int64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("archiving attempt record %s: %w", key, err)
	}
	return nil
}

// Key builds <prefix>/YYYY/MM/DD/<hhmmss.mmm>-<model>-<uuid>.json for a record.
func (a *Archive) Key(rec domain.LogRecord) string {
	ts := rec.Timestamp.UTC()
	name := fmt.Sprintf("%s-%s-%s.json", ts.Format("150405.000"), keyReplacer.Replace(rec.Model), uuid.NewString())
	return path.Join(a.prefix, ts.Format("2006/01/02"), name)
}
