package loader_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actionutils/gh-release-notes/pkg/infra/loader"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.md")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_LocalFile(t *testing.T) {
	path := writeTemp(t, "## Notes\n\n$CHANGES\n")

	content, err := loader.New().Load(context.Background(), path)

	gt.NoError(t, err)
	gt.Value(t, content).Equal("## Notes\n\n$CHANGES\n")
}

func TestLoad_LocalFileMissing(t *testing.T) {
	_, err := loader.New().Load(context.Background(), filepath.Join(t.TempDir(), "absent.md"))

	gt.Error(t, err)
}

func TestLoad_ChecksumMatch(t *testing.T) {
	body := "release template body"
	path := writeTemp(t, body)
	sum := sha256.Sum256([]byte(body))

	content, err := loader.New().Load(context.Background(), path+"#sha256="+hex.EncodeToString(sum[:]))

	gt.NoError(t, err)
	gt.Value(t, content).Equal(body)
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	path := writeTemp(t, "actual content")

	wrong := "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
	_, err := loader.New().Load(context.Background(), path+"#sha256="+wrong)

	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("checksum mismatch")
}

func TestLoad_RejectsPlainHTTP(t *testing.T) {
	_, err := loader.New().Load(context.Background(), "http://example.com/template.md")

	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("plain HTTP")
}
