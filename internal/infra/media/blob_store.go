// Package media stores uploaded post media in a gocloud.dev blob bucket.
package media

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"postly/config"
	"postly/internal/domain/service"
	"postly/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

type blobStore struct {
	bucket *blob.Bucket
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured bucket and closes it on shutdown.
func New(params Params) (service.MediaStore, error) {
	bucket, err := OpenBucket(params.Ctx, params.Config.Media)
	if err != nil {
		return nil, err
	}

	store := NewBlobStore(bucket)
	params.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing media bucket")

			return store.Close()
		},
	})

	return store, nil
}

// OpenBucket opens cfg.BucketURL, or a file bucket rooted at cfg.UploadDir
// (created if missing) when no URL is configured.
func OpenBucket(ctx context.Context, cfg *config.MediaConfig) (*blob.Bucket, error) {
	if cfg == nil {
		return nil, errors.New("media configuration is missing")
	}

	if cfg.BucketURL != "" {
		bucket, err := blob.OpenBucket(ctx, cfg.BucketURL)
		if err != nil {
			return nil, errors.Wrapf(err, "open bucket %s", cfg.BucketURL)
		}

		return bucket, nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", cfg.UploadDir)
	}

	bucket, err := fileblob.OpenBucket(cfg.UploadDir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open upload dir %s", cfg.UploadDir)
	}

	return bucket, nil
}

// NewBlobStore wraps an already opened bucket. The store owns the bucket from then on.
func NewBlobStore(bucket *blob.Bucket) service.MediaStore {
	return &blobStore{bucket: bucket}
}

// ValidateName rejects names that are empty, hidden or could address
// anything outside the flat media namespace.
func ValidateName(name string) error {
	if name == "" || name == "." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.Wrapf(service.ErrInvalidMediaName, "%q", name)
	}

	return nil
}

func (s *blobStore) Write(ctx context.Context, name string, r io.Reader, contentType string) (int64, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}

	// Cancelling the writer's context aborts the upload instead of committing a partial blob.
	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, name, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return 0, errors.Wrap(err, "open blob writer")
	}

	written, copyErr := io.Copy(w, r)
	if copyErr != nil {
		cancel()
		_ = w.Close()

		return written, errors.Wrap(copyErr, "write blob")
	}

	if err := w.Close(); err != nil {
		_ = s.bucket.Delete(context.WithoutCancel(ctx), name)

		return written, errors.Wrap(err, "commit blob")
	}

	return written, nil
}

func (s *blobStore) Open(ctx context.Context, name string) (*service.MediaObject, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	reader, err := s.bucket.NewReader(ctx, name, nil)
	if err != nil {
		return nil, mapBlobError(err, "open blob")
	}

	return &service.MediaObject{
		ReadCloser: reader,
		Attributes: service.MediaAttributes{
			ContentType: reader.ContentType(),
			Size:        reader.Size(),
			ModTime:     reader.ModTime(),
		},
	}, nil
}

func (s *blobStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := s.bucket.Delete(ctx, name); err != nil {
		return mapBlobError(err, "delete blob")
	}

	return nil
}

func (s *blobStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	exists, err := s.bucket.Exists(ctx, name)
	if err != nil {
		return false, errors.Wrap(err, "stat blob")
	}

	return exists, nil
}

func (s *blobStore) Close() error {
	return errors.WithStack(s.bucket.Close())
}

func mapBlobError(err error, msg string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return errors.Wrap(service.ErrMediaNotFound, msg)
	}

	return errors.Wrap(err, msg)
}
