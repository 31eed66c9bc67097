package updates

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Version is the running application version.
const Version = "1.1.3"

const installerName = "Instalador_Bulgaree_Update.exe"

// VersionInfo is the payload of the version endpoint.
type VersionInfo struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Client polls the hosted version manifest and downloads installers.
type Client struct {
	httpClient *resty.Client
	versionURL string
	logger     *zap.Logger
}

// NewClient builds an update client for the given manifest URL.
func NewClient(versionURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.SetTimeout(5 * time.Second)

	return &Client{
		httpClient: restyClient,
		versionURL: versionURL,
		logger:     logger,
	}
}

// Check fetches the current version manifest. A throwaway query parameter
// defeats intermediary caching of the raw file.
func (c *Client) Check(ctx context.Context) (*VersionInfo, error) {
	result := new(VersionInfo)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("t", fmt.Sprintf("%d", rand.Int63())).
		SetResult(result).
		Get(c.versionURL)
	if err != nil {
		return nil, fmt.Errorf("fetch version manifest: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch version manifest: status %d", resp.StatusCode())
	}

	return result, nil
}

// Newer reports whether remote should be offered as an update over current.
// The comparison is plain lexicographic string ordering, which misorders
// multi-digit segments ("1.10.0" sorts below "1.9.0"). Known limitation, kept
// until the release numbering scheme is settled.
func Newer(remote, current string) bool {
	return remote != "" && remote != current && remote > current
}

// Download streams the installer at url into the temp directory and reports
// whole-percent progress through the callback when the size is known. It
// returns the installer path.
func (c *Client) Download(ctx context.Context, url string, progress func(pct int)) (string, error) {
	dl := resty.New()
	dl.SetDoNotParseResponse(true)

	resp, err := dl.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("download installer: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("download installer: status %d", resp.StatusCode())
	}

	path := filepath.Join(os.TempDir(), installerName)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create installer file: %w", err)
	}
	defer out.Close()

	totalSize := resp.RawResponse.ContentLength
	var downloaded int64
	buf := make([]byte, 64*1024)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return "", fmt.Errorf("write installer file: %w", writeErr)
			}
			downloaded += int64(n)
			if totalSize > 0 && progress != nil {
				progress(int(downloaded * 100 / totalSize))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", fmt.Errorf("download installer: %w", readErr)
		}
	}

	c.logger.Info("installer downloaded", zap.String("path", path), zap.Int64("bytes", downloaded))
	return path, nil
}
