package artifacts

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfl-io/sflreport/pkg/shared/config"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
)

type fakeUploader struct {
	objects map[string]string
	failOn  map[string]bool
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	key := aws.StringValue(input.Key)
	if f.failOn[filepath.Base(key)] {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[key] = string(data)
	return &s3manager.UploadOutput{Location: "s3://bucket/" + key}, nil
}

func newTestStore(t *testing.T, failOn ...string) (*Store, *fakeUploader) {
	t.Helper()
	up := &fakeUploader{objects: map[string]string{}, failOn: map[string]bool{}}
	for _, name := range failOn {
		up.failOn[name] = true
	}
	store := NewStore(up, "bucket", "/sfl/", hclog.NewNullLogger())
	store.newID = func() string { return "run-1" }
	return store, up
}

func writeArtifact(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestGetArtifactName(t *testing.T) {
	ts := time.Date(2025, 9, 15, 8, 28, 46, 0, time.UTC)
	assert.Equal(t, "report_gzoltar_2025-09-15T08:28:46Z.sflreport-artifact", GetArtifactName("report", "GZoltar", ts))
}

func TestUpload(t *testing.T) {
	root := t.TempDir()
	abs := writeArtifact(t, root, "sfl/txt/spectra.csv", "name")
	writeArtifact(t, root, "comment.md", "body")

	store, up := newTestStore(t)
	resp, err := store.Upload(context.Background(), "gzoltar", []string{abs, "comment.md"}, root, Options{})
	require.NoError(t, err)

	assert.Equal(t, "sfl/gzoltar/run-1", resp.KeyPrefix)
	assert.Equal(t, []string{"sfl/gzoltar/run-1/sfl/txt/spectra.csv", "sfl/gzoltar/run-1/comment.md"}, resp.Uploaded)
	assert.Empty(t, resp.FailedItems)
	assert.Equal(t, "body", up.objects["sfl/gzoltar/run-1/comment.md"])
}

func TestUploadContinueOnError(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "a.csv", "a")
	writeArtifact(t, root, "b.csv", "b")

	store, _ := newTestStore(t, "a.csv")
	resp, err := store.Upload(context.Background(), "gzoltar", []string{"a.csv", "missing.csv", "b.csv"}, root, Options{ContinueOnError: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"sfl/gzoltar/run-1/b.csv"}, resp.Uploaded)
	require.Len(t, resp.FailedItems, 2)
	assert.Equal(t, "a.csv", resp.FailedItems[0].Path)
	assert.Equal(t, "missing.csv", resp.FailedItems[1].Path)
}

func TestUploadStopsOnError(t *testing.T) {
	root := t.TempDir()
	writeArtifact(t, root, "a.csv", "a")

	store, _ := newTestStore(t, "a.csv")
	_, err := store.Upload(context.Background(), "gzoltar", []string{"a.csv"}, root, Options{})
	require.Error(t, err)
	assert.True(t, serrors.IsKind(err, serrors.KindUpload))
	assert.Contains(t, err.Error(), `encountered an error when uploading artifact "gzoltar"`)
	assert.Contains(t, err.Error(), "access denied")
}

func TestUploadRejectsPathsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	store, _ := newTestStore(t)

	resp, err := store.Upload(context.Background(), "gzoltar", []string{"../escape.csv"}, root, Options{ContinueOnError: true})
	require.NoError(t, err)
	require.Len(t, resp.FailedItems, 1)
	assert.Contains(t, resp.FailedItems[0].Err.Error(), "escapes root")
}

func TestUploadValidation(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Upload(context.Background(), "", nil, "/tmp", Options{})
	assert.True(t, serrors.IsKind(err, serrors.KindValidation))

	_, err = store.Upload(context.Background(), "a", nil, "", Options{})
	assert.True(t, serrors.IsKind(err, serrors.KindValidation))

	_, err = NewS3Store(config.Artifacts{}, nil)
	assert.True(t, serrors.IsKind(err, serrors.KindValidation))
}
