package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/lingua-immerse/lingua-immerse/pkg/segment"
)

// MaxBodySize caps how much HTML is read from a fetched page.
const MaxBodySize = 10 * 1024 * 1024

// Article is the readable text extracted from a document.
type Article struct {
	Title    string
	Byline   string
	SiteName string
	URL      string
	Text     string
}

// DefaultClient is used by Fetch when no client is given.
var DefaultClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads rawURL and extracts its main article text.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (*Article, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	if client == nil {
		client = DefaultClient
	}

	// Create a custom request with a User-Agent to avoid being blocked (e.g. 403 Forbidden or Cloudflare)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: got status code %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxBodySize {
		return nil, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, MaxBodySize)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeded maximum size limit of %d bytes", MaxBodySize)
	}
	body = segment.SanitizeRuby(body)
	utf8Body, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return extract(utf8Body, parsedURL)
}

// ReadFile loads a local document. HTML files are read as UTF-8 and go
// through article extraction; anything else is taken as plain text titled after the file.
func ReadFile(path string) (*Article, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return extract(bytes.NewReader(segment.SanitizeRuby(body)), fileURL)
	}
	return &Article{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		URL:   fileURL.String(),
		Text:  string(body),
	}, nil
}

// extract parses UTF-8 HTML with ruby annotations already removed, so
// readability never sniffs the charset itself.
func extract(r io.Reader, pageURL *url.URL) (*Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	article, err := readability.FromDocument(doc, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}
	return &Article{
		Title:    article.Title,
		Byline:   article.Byline,
		SiteName: article.SiteName,
		URL:      pageURL.String(),
		Text:     article.TextContent,
	}, nil
}
