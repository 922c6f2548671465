package dictionary

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	repoOwner = "scriptin"
	repoName  = "jmdict-simplified"
)

// DefaultReleaseURL is the GitHub API endpoint for the latest jmdict-simplified release.
var DefaultReleaseURL = fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", repoOwner, repoName)

// Downloader fetches the JMdict release archive.
type Downloader struct {
	// ReleaseURL defaults to DefaultReleaseURL.
	ReleaseURL string
	Client     *http.Client
	// Logger reports download progress. nil means no logging.
	Logger *slog.Logger
}

// EnsureDictionary downloads the dictionary to path unless it already exists.
func EnsureDictionary(ctx context.Context, path string) error {
	return (&Downloader{}).Ensure(ctx, path)
}

// Ensure checks if the dictionary exists at path. If not, it discovers the
// latest release, downloads it and extracts the JSON file to path.
func (d *Downloader) Ensure(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	d.log("dictionary not found, downloading", "path", path)
	downloadURL, err := d.latestAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to find latest dictionary release: %w", err)
	}
	d.log("downloading dictionary", "url", downloadURL)
	return d.downloadAndExtract(ctx, downloadURL, path)
}

func (d *Downloader) log(msg string, args ...any) {
	if d.Logger != nil {
		d.Logger.Info(msg, args...)
	}
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: 5 * time.Minute}
}

func (d *Downloader) latestAssetURL(ctx context.Context) (string, error) {
	apiURL := d.ReleaseURL
	if apiURL == "" {
		apiURL = DefaultReleaseURL
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", err
	}
	// GitHub API requires a User-Agent.
	req.Header.Set("User-Agent", "lingodemo-cli")

	resp, err := d.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	for _, asset := range release.Assets {
		if strings.Contains(asset.Name, "jmdict-eng-common") && (strings.HasSuffix(asset.Name, ".json.tgz") || strings.HasSuffix(asset.Name, ".json.gz")) {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no suitable dictionary asset found in latest release")
}

func (d *Downloader) downloadAndExtract(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, ".json") {
			continue
		}
		return writeAtomically(destPath, tarReader)
	}
	return fmt.Errorf("no json file found in downloaded archive")
}

// writeAtomically leaves no partial file at path if the copy fails.
func writeAtomically(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
