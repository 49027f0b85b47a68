/*
Package attachment downloads disclosure documents and prepares them for
posting, rendering PDFs to a single PNG page with poppler-utils.
*/
package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout       = 15 * time.Second
	pdfProcessingTimeout = 60 * time.Second
	pdfContentType       = "application/pdf"
	pngContentType       = "image/png"
)

// File is a document ready to be attached to a message.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Source holds the downloaded bytes before any conversion.
	Source     []byte
	SourceType string
}

// IsPDF reports whether the downloaded document was a PDF.
func (f *File) IsPDF() bool {
	return strings.Contains(f.SourceType, pdfContentType)
}

type Fetcher struct {
	client    *http.Client
	pdftoppm  string
	pdftotext string
	logger    *zap.Logger
}

type Option func(*Fetcher)

// WithPDFToPPM overrides the pdftoppm binary.
func WithPDFToPPM(bin string) Option {
	return func(f *Fetcher) { f.pdftoppm = bin }
}

// WithPDFToText overrides the pdftotext binary.
func WithPDFToText(bin string) Option {
	return func(f *Fetcher) { f.pdftotext = bin }
}

func NewFetcher(timeout time.Duration, logger *zap.Logger, opts ...Option) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		client:    &http.Client{Timeout: timeout},
		pdftoppm:  "pdftoppm",
		pdftotext: "pdftotext",
		logger:    logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document at rawURL. An empty URL yields no file and
// no error. PDFs are rendered to PNG; if rendering fails the original bytes
// are returned.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*File, error) {
	if rawURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	file := &File{
		Name:        fileName(rawURL),
		ContentType: contentType,
		Data:        data,
		Source:      data,
		SourceType:  contentType,
	}
	if !file.IsPDF() {
		return file, nil
	}

	png, err := f.renderFirstPage(ctx, data)
	if err != nil {
		f.logger.Warn("failed to render PDF, attaching original", zap.String("url", rawURL), zap.Error(err))
		return file, nil
	}

	file.Data = png
	file.ContentType = pngContentType
	file.Name = strings.TrimSuffix(file.Name, path.Ext(file.Name)) + ".png"
	return file, nil
}

func (f *Fetcher) renderFirstPage(ctx context.Context, pdf []byte) ([]byte, error) {
	return f.runPoppler(ctx, pdf, f.pdftoppm, "-singlefile", "-png", "-")
}

// ExtractText returns the plain text of a PDF.
func (f *Fetcher) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	out, err := f.runPoppler(ctx, pdf, f.pdftotext, "-raw", "-", "-")
	if err != nil {
		return "", err
	}
	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("pdftotext extracted empty text string. File may be image-based or protected")
	}
	return text, nil
}

func (f *Fetcher) runPoppler(ctx context.Context, input []byte, bin string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfProcessingTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s binary not found. Please ensure poppler-utils is installed: %w", bin, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s timed out after %s", bin, pdfProcessingTimeout)
		}
		return nil, fmt.Errorf("%s failed: %w. Stderr: %s", bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func fileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "document"
	}
	return path.Base(u.Path)
}
