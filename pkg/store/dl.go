package store

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

func NewDownloader(logger *zap.Logger, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		cli:      resty.New().SetDoNotParseResponse(true),
		log:      logger,
		progress: os.Stderr,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

type DownloaderOption func(d *Downloader)

func WithDownloadLimit(max bytesize.ByteSize) DownloaderOption {
	return func(d *Downloader) {
		d.maxSize = max
	}
}

// WithDownloadPixels caps the declared dimensions of fetched images.
func WithDownloadPixels(n int) DownloaderOption {
	return func(d *Downloader) {
		d.maxPixels = n
	}
}

// WithProgress redirects the progress bar; nil disables it.
func WithProgress(w io.Writer) DownloaderOption {
	return func(d *Downloader) {
		d.progress = w
	}
}

type Downloader struct {
	cli       *resty.Client
	log       *zap.Logger
	progress  io.Writer
	maxSize   bytesize.ByteSize
	maxPixels int
}

// Fetch downloads the image at url.
func (d *Downloader) Fetch(url string) (*Source, error) {
	resp, err := d.cli.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %q failed: %w", url, err)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download %q failed: %s", url, resp.Status())
	}

	length := resp.RawResponse.ContentLength
	if length > 0 {
		if err := checkSize(bytesize.ByteSize(length), d.maxSize); err != nil {
			return nil, fmt.Errorf("download %q failed: %w", url, err)
		}
	}

	var body io.Reader = resp.RawBody()
	if d.maxSize > 0 {
		body = io.LimitReader(body, int64(d.maxSize)+1)
	}

	var buf bytes.Buffer
	w := io.Writer(&buf)
	if d.progress != nil {
		bar := progressbar.NewOptions64(length,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", url)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		w = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(w, body); err != nil {
		return nil, fmt.Errorf("download %q failed: %w", url, err)
	}

	if err := checkSize(bytesize.ByteSize(buf.Len()), d.maxSize); err != nil {
		return nil, fmt.Errorf("download %q failed: %w", url, err)
	}

	d.log.With(zap.String("url", url), zap.Stringer("size", bytesize.ByteSize(buf.Len()))).Debug("downloaded")
	return NewSource(url, buf.Bytes()).WithMaxPixels(d.maxPixels), nil
}
