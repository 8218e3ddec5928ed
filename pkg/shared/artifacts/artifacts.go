package artifacts

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/sfl-io/sflreport/pkg/shared/config"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
	"github.com/sfl-io/sflreport/pkg/shared/files"
)

// GetArtifactName build returns artifact name.
// Example: report_gzoltar_2025-09-15T08:28:46Z.sflreport-artifact.
func GetArtifactName(command, tool string, t time.Time) string {
	ts := t.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s_%s_%s.sflreport-artifact", command, strings.ToLower(tool), ts)
}

// Uploader is the part of s3manager.Uploader used by Store.
type Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Options control a single Upload call.
type Options struct {
	// ContinueOnError logs failed files and keeps uploading the rest.
	ContinueOnError bool
}

// FailedItem is a file that could not be uploaded.
type FailedItem struct {
	Path string
	Err  error
}

// UploadResponse describes the outcome of an Upload call.
type UploadResponse struct {
	ArtifactName string
	KeyPrefix    string
	Uploaded     []string
	FailedItems  []FailedItem
}

// Store uploads report artifacts into an S3 bucket.
type Store struct {
	uploader Uploader
	bucket   string
	prefix   string
	logger   hclog.Logger
	newID    func() string
}

// NewStore creates a Store around an existing uploader.
func NewStore(uploader Uploader, bucket, prefix string, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{
		uploader: uploader,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		logger:   logger,
		newID:    func() string { return uuid.New().String() },
	}
}

// NewS3Store creates a Store backed by an AWS session built from the
// artifacts configuration and the default AWS credential chain.
func NewS3Store(cfg config.Artifacts, logger hclog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, serrors.Validation("artifacts bucket must not be empty")
	}

	awsConfig := aws.NewConfig()
	if cfg.Region != "" {
		awsConfig = awsConfig.WithRegion(cfg.Region)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, serrors.New(serrors.KindUpload, "unable to create aws session", err)
	}

	return NewStore(s3manager.NewUploader(sess), cfg.Bucket, cfg.Prefix, logger), nil
}

// Upload stores every file of paths under a fresh key prefix derived from name.
// Keys keep the file layout relative to rootDir.
func (s *Store) Upload(ctx context.Context, name string, paths []string, rootDir string, opts Options) (*UploadResponse, error) {
	if name == "" {
		return nil, serrors.Validation("arg 'name' must not be empty")
	}
	if rootDir == "" {
		return nil, serrors.Validation("arg 'rootDir' must not be empty")
	}
	if s.bucket == "" {
		return nil, serrors.Validation("artifacts bucket must not be empty")
	}

	resp := &UploadResponse{
		ArtifactName: name,
		KeyPrefix:    path.Join(s.prefix, name, s.newID()),
	}

	for _, p := range paths {
		key, err := s.uploadFile(ctx, resp.KeyPrefix, rootDir, p)
		if err != nil {
			if !opts.ContinueOnError {
				return resp, serrors.New(serrors.KindUpload,
					fmt.Sprintf("encountered an error when uploading artifact %q", name), err)
			}
			s.logger.Warn("failed to upload artifact file", "artifact", name, "path", p, "error", err)
			resp.FailedItems = append(resp.FailedItems, FailedItem{Path: p, Err: err})
			continue
		}
		s.logger.Debug("artifact file uploaded", "bucket", s.bucket, "key", key)
		resp.Uploaded = append(resp.Uploaded, key)
	}

	if len(resp.FailedItems) > 0 {
		s.logger.Warn("artifact uploaded with failures", "artifact", name, "failed", len(resp.FailedItems), "uploaded", len(resp.Uploaded))
	} else {
		s.logger.Info("artifact uploaded", "artifact", name, "bucket", s.bucket, "prefix", resp.KeyPrefix, "files", len(resp.Uploaded))
	}

	return resp, nil
}

func (s *Store) uploadFile(ctx context.Context, keyPrefix, rootDir, filePath string) (string, error) {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(rootDir, filePath)
	}

	absPath, err := files.EnsureWithinRoot(rootDir, filePath)
	if err != nil {
		return "", err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("resolve relative path of %q: %w", absPath, err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", absPath, err)
	}
	defer f.Close()

	key := path.Join(keyPrefix, filepath.ToSlash(rel))
	if _, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}); err != nil {
		return "", fmt.Errorf("upload %q: %w", key, err)
	}

	return key, nil
}
