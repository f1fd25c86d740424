package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actionutils/gh-release-notes/pkg/domain/interfaces"
	"github.com/actionutils/gh-release-notes/pkg/domain/types"
)

const (
	// Remote fetches abort after this duration
	fetchTimeout = 30 * time.Second
	// Remote content larger than this is rejected outright
	maxContentSize = 1 << 20
)

type loader struct {
	httpClient *http.Client
}

// New creates a content loader resolving local paths and HTTPS URLs.
// HTTPS locators may carry a `#sha256=<hex>` qualifier; a mismatch is fatal.
func New() interfaces.ContentLoader {
	return &loader{
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Load resolves a locator to its content
func (l *loader) Load(ctx context.Context, locator string) (string, error) {
	source, checksum := splitChecksum(locator)

	if strings.HasPrefix(source, "https://") {
		return l.loadHTTPS(ctx, source, checksum)
	}
	if strings.HasPrefix(source, "http://") {
		return "", goerr.New("plain HTTP locators are not allowed",
			goerr.V("locator", source), goerr.Tag(types.ErrTagConfig))
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read local content",
			goerr.V("path", source), goerr.Tag(types.ErrTagConfig))
	}
	if err := verifyChecksum(data, checksum); err != nil {
		return "", err
	}
	return string(data), nil
}

func (l *loader) loadHTTPS(ctx context.Context, url, checksum string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create content request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", types.UserAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch remote content",
			goerr.V("url", url), goerr.Tag(types.ErrTagRemote))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status fetching remote content",
			goerr.V("url", url), goerr.V("status", resp.StatusCode), goerr.Tag(types.ErrTagRemote))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentSize+1))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read remote content", goerr.V("url", url))
	}
	if len(data) > maxContentSize {
		return "", goerr.New("remote content exceeds size cap",
			goerr.V("url", url), goerr.V("cap_bytes", maxContentSize), goerr.Tag(types.ErrTagSizeLimit))
	}
	if err := verifyChecksum(data, checksum); err != nil {
		return "", err
	}
	return string(data), nil
}

// splitChecksum separates a trailing `#sha256=<hex>` qualifier from a locator
func splitChecksum(locator string) (source, checksum string) {
	idx := strings.LastIndex(locator, "#sha256=")
	if idx < 0 {
		return locator, ""
	}
	return locator[:idx], locator[idx+len("#sha256="):]
}

func verifyChecksum(data []byte, checksum string) error {
	if checksum == "" {
		return nil
	}
	sum := sha256.Sum256(data)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, checksum) {
		return goerr.New("content checksum mismatch",
			goerr.V("expected", checksum), goerr.V("actual", got), goerr.Tag(types.ErrTagChecksum))
	}
	return nil
}
