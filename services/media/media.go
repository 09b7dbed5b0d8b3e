package mediasvc

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core"
)

// Media backends
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

var (
	// errors
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("file must be an image")
)

type (
	// Storage stores public files under a key and returns their URL.
	Storage interface {
		Save(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error)
		Delete(ctx context.Context, key string) error
	}

	Service struct {
		storage Storage
		maxSize int64
	}
)

func NewService(storage Storage, maxSize int64) *Service {
	return &Service{storage: storage, maxSize: maxSize}
}

// NewStorage returns the storage backend selected by conf.
func NewStorage(conf core.MediaConfig) (Storage, error) {
	switch conf.Backend {
	case BackendLocal, "":
		return NewLocalStorage(conf.Dir, conf.BaseURL), nil
	case BackendS3:
		if conf.S3Bucket == "" {
			return nil, errors.New("media.s3Bucket is required by the s3 backend")
		}
		return NewS3Storage(conf), nil
	}
	return nil, errors.Errorf("unknown media backend %q", conf.Backend)
}

// SaveProfilePicture checks and stores an uploaded profile picture, returning its public URL.
// Declared content types are not trusted: the type is sniffed from the content.
func (svc *Service) SaveProfilePicture(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	// read one byte past the limit to detect oversized files
	data, err := io.ReadAll(io.LimitReader(body, svc.maxSize+1))
	if err != nil {
		return "", errors.Wrap(err, "reading upload")
	}
	if int64(len(data)) > svc.maxSize {
		return "", core.NewFieldError("picture", ErrTooLarge)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", core.NewFieldError("picture", ErrNotImage)
	}

	key := path.Join("avatars", userID, uuid.New().String()+strings.ToLower(filepath.Ext(filename)))
	url, err := svc.storage.Save(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.Wrap(err, "saving profile picture")
	}
	return url, nil
}

type localStorage struct {
	dir     string
	baseURL string
}

var _ Storage = (*localStorage)(nil)

// NewLocalStorage writes files under dir; they are expected to be served at baseURL.
func NewLocalStorage(dir, baseURL string) *localStorage {
	return &localStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *localStorage) Save(_ context.Context, key, _ string, body io.ReadSeeker, _ int64) (string, error) {
	fp := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media directory")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	defer f.Close()

	if _, err = io.Copy(f, body); err != nil {
		return "", errors.Wrap(err, "writing media file")
	}
	return s.baseURL + "/" + key, nil
}

func (s *localStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing media file")
	}
	return nil
}

// s3Storage stores files in an S3 compatible bucket (AWS, Cloudflare R2, MinIO...).
type s3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

var _ Storage = (*s3Storage)(nil)

func NewS3Storage(conf core.MediaConfig) *s3Storage {
	opts := s3.Options{
		Credentials: credentials.NewStaticCredentialsProvider(conf.S3AccessKey, conf.S3SecretKey, ""),
		Region:      conf.S3Region,
	}
	if conf.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(conf.S3Endpoint)
		opts.UsePathStyle = true
	}
	publicURL := conf.S3PublicURL
	if publicURL == "" {
		publicURL = "https://" + conf.S3Bucket + ".s3." + conf.S3Region + ".amazonaws.com"
	}
	return &s3Storage{
		client:    s3.New(opts),
		bucket:    conf.S3Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *s3Storage) Save(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading to s3")
	}
	return s.publicURL + "/" + key, nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "deleting from s3")
	}
	return nil
}
