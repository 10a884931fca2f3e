// Package attachments uploads inspection photos for one sub-form of a report
// and maintains the ordered URL list stored on it.
package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/blob"
)

var (
	ErrNotImage        = errors.New("file is not an image")
	ErrTooLarge        = errors.New("file exceeds upload limit")
	ErrIndexOutOfRange = errors.New("photo index out of range")
)

// MaxPhotoBytes bounds a single photo.
const MaxPhotoBytes = 25 << 20

var tracer = otel.Tracer("p9e.in/towerpro/pkg/attachments")

// File is one photo selected for upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart wraps a multipart form file.
func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// Progress describes the file currently uploading. Percent is for that file
// only.
type Progress struct {
	File    int    `json:"file"`
	Files   int    `json:"files"`
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// Uploader runs the photo pipeline against a blob store.
type Uploader struct {
	store blob.Store
	log   logrus.FieldLogger
	now   func() time.Time

	mu     sync.Mutex
	lastMs int64
}

func NewUploader(store blob.Store, log logrus.FieldLogger) *Uploader {
	return &Uploader{store: store, log: log, now: time.Now}
}

// Upload stores files one at a time, in order, and returns existing with the
// new URLs appended. If a file fails the URLs accumulated before it are still
// returned together with the error, so the caller can keep the partial result.
func (u *Uploader) Upload(ctx context.Context, reportID string, target models.PhotoTarget, files []File, existing []string, progress func(Progress)) ([]string, error) {
	if !target.Valid() {
		return slices.Clone(existing), fmt.Errorf("%w: %q", models.ErrUnknownTarget, target)
	}

	ctx, span := tracer.Start(ctx, "attachments.Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.id", reportID),
		attribute.String("report.section", string(target)),
		attribute.Int("upload.files", len(files)),
	)

	urls := slices.Clone(existing)
	for i, f := range files {
		url, err := u.put(ctx, reportID, target, i, len(files), f, progress)
		if err != nil {
			u.log.WithFields(logrus.Fields{
				"op":        "attachments.upload",
				"report_id": reportID,
				"section":   target,
				"file":      f.Name,
				"uploaded":  i,
				"remaining": len(files) - i,
			}).WithError(err).Error("photo upload stopped")
			span.RecordError(err)
			span.SetStatus(codes.Error, "upload stopped")
			return urls, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (u *Uploader) put(ctx context.Context, reportID string, target models.PhotoTarget, i, n int, f File, progress func(Progress)) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPhotoBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxPhotoBytes {
		return "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	report := func(written, total int64) {
		if progress == nil || total <= 0 {
			return
		}
		pct := int(written * 100 / total)
		progress(Progress{File: i + 1, Files: n, Name: f.Name, Percent: min(pct, 100)})
	}
	report(0, int64(len(data)))

	key := u.objectKey(reportID, target, f.Name)
	return u.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String(), report)
}

// objectKey is reports/<id>/<section>/<millis>_<filename>. Millis are kept
// strictly increasing so two files with the same name never collide.
func (u *Uploader) objectKey(reportID string, target models.PhotoTarget, name string) string {
	u.mu.Lock()
	ms := u.now().UnixMilli()
	if ms <= u.lastMs {
		ms = u.lastMs + 1
	}
	u.lastMs = ms
	u.mu.Unlock()

	return path.Join("reports", reportID, string(target), fmt.Sprintf("%d_%s", ms, sanitizeName(name)))
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == ".." {
		return "photo"
	}
	return name
}

// Remove drops the URL at idx and returns a new list. The blob itself is kept.
func Remove(urls []string, idx int) ([]string, error) {
	if idx < 0 || idx >= len(urls) {
		return slices.Clone(urls), fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(urls))
	}
	out := make([]string, 0, len(urls)-1)
	out = append(out, urls[:idx]...)
	return append(out, urls[idx+1:]...), nil
}
