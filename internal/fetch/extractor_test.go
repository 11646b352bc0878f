package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var articlePage = `<!DOCTYPE html>
<html><head><title>t</title><script>var x = 1;</script></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Quantum Widgets Explained</h1>
<p>` + filler + `</p>
<p>` + filler + `</p>
</article>
<footer>Copyright</footer>
</body></html>`

var filler = strings.Repeat("Widgets are small. ", 20)

func TestExtractPrefersArticleElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(5 * time.Second)
	body, err := extractor.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(body, "Quantum Widgets Explained") {
		t.Fatalf("heading missing from body: %q", body)
	}
	if strings.Contains(body, "Home | About") || strings.Contains(body, "Copyright") {
		t.Fatalf("chrome leaked into body: %q", body)
	}
	if strings.Contains(body, "var x") {
		t.Fatalf("script content leaked into body")
	}
}

func TestExtractRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(5 * time.Second)
	if _, err := extractor.Extract(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

func TestExtractRejectsThinPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body><p>too short</p></body></html>"))
	}))
	defer srv.Close()

	extractor := NewHTTPExtractor(5 * time.Second)
	if _, err := extractor.Extract(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for thin page")
	}
}
