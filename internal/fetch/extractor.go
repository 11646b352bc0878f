package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	userAgent = "curacast/1.0"
	// Bodies shorter than this rarely contain the actual article; treating
	// them as failures lets the quota loop draw a replacement candidate.
	minBodyChars = 200
	maxBodyChars = 50000
)

// Extractor retrieves readable body text for a URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// HTTPExtractor fetches pages over HTTP and strips them down to article
// text with goquery.
type HTTPExtractor struct {
	client *http.Client
}

// NewHTTPExtractor wires an HTTP client; timeout is the per-request
// deadline covering connect, response, and body read.
func NewHTTPExtractor(timeout time.Duration) *HTTPExtractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPExtractor{client: &http.Client{Timeout: timeout}}
}

// Extract downloads the page and returns its main text content.
func (e *HTTPExtractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	body := extractReadable(doc)
	if len(body) < minBodyChars {
		return "", fmt.Errorf("extracted body too short (%d chars)", len(body))
	}
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	return body, nil
}

// extractReadable harvests paragraph text, preferring semantic containers
// over the whole body.
func extractReadable(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, noscript, form").Remove()

	for _, selector := range []string{"article", "main", "[role=main]", "#content", ".post-content", ".entry-content"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := collectParagraphs(sel); len(text) >= minBodyChars {
				return text
			}
		}
	}
	return collectParagraphs(doc.Find("body"))
}

func collectParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Find("p, h1, h2, h3, li").Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(sel.Text())
	}
	return strings.Join(parts, "\n\n")
}
