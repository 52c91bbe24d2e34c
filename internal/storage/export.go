package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gogotex/docmanager/internal/document"
)

// Uploader stores an object under key.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// Downloader is implemented by uploaders that can stream an object back.
type Downloader interface {
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// Presigner is implemented by uploaders that can hand out download links.
type Presigner interface {
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

var (
	ErrNotFound            = errors.New("object not found")
	ErrInvalidSnapshotName = errors.New("invalid snapshot name")
	ErrDownloadUnsupported = errors.New("storage cannot read snapshots back")
)

const exportPrefix = "exports/"

// Snapshot is the JSON body written for an export.
type Snapshot struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Count      int                 `json:"count"`
	Documents  []document.Document `json:"documents"`
}

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	URL   string `json:"url,omitempty"`
}

// Exporter writes JSON snapshots of documents to object storage and streams
// them back by name. Snapshots are never loaded back into a store.
type Exporter struct {
	up        Uploader
	urlExpiry time.Duration
	now       func() time.Time
}

func NewExporter(up Uploader) *Exporter {
	return &Exporter{
		up:        up,
		urlExpiry: 15 * time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export uploads docs as exports/<timestamp>.json.
func (e *Exporter) Export(ctx context.Context, docs []document.Document) (ExportResult, error) {
	if docs == nil {
		docs = []document.Document{}
	}
	now := e.now()
	b, err := json.Marshal(Snapshot{ExportedAt: now, Count: len(docs), Documents: docs})
	if err != nil {
		return ExportResult{}, err
	}
	name := now.Format("20060102T150405.000000000") + ".json"
	key := exportPrefix + name
	if err := e.up.UploadFile(ctx, key, bytes.NewReader(b), int64(len(b)), "application/json"); err != nil {
		return ExportResult{}, fmt.Errorf("upload %s: %w", key, err)
	}
	res := ExportResult{Key: key, Name: name, Count: len(docs)}
	if p, ok := e.up.(Presigner); ok {
		u, err := p.GetPresignedURL(ctx, key, e.urlExpiry)
		if err != nil {
			return ExportResult{}, fmt.Errorf("presign %s: %w", key, err)
		}
		res.URL = u
	}
	return res, nil
}

// Open returns the snapshot stored under name (ExportResult.Name). The caller
// closes the reader.
func (e *Exporter) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSnapshotName, name)
	}
	d, ok := e.up.(Downloader)
	if !ok {
		return nil, ErrDownloadUnsupported
	}
	rc, err := d.DownloadFile(ctx, exportPrefix+name)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return rc, nil
}
