package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

const articleHTML = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>Green Memories</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Green Memories</h1>
<p>This is the first paragraph of the article. It talks about a green garden in the city and the people who visit it every morning.</p>
<p>The second paragraph continues the story with <ruby>漢字<rt>かんじ</rt></ruby> and more words, so that the extractor has plenty of readable text to score.</p>
<p>A third paragraph closes the article, mentioning the trees, the benches and the small pond near the gate that everyone remembers.</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

func TestFetchExtractsArticle(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	article, err := Fetch(context.Background(), srv.Client(), srv.URL+"/story")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(gotUA, "Mozilla") {
		t.Errorf("expected a browser user agent, got %q", gotUA)
	}
	if !strings.Contains(article.Title, "Green Memories") {
		t.Errorf("unexpected title %q", article.Title)
	}
	if !strings.Contains(article.Text, "first paragraph") {
		t.Errorf("article text missing content: %q", article.Text)
	}
	if !strings.Contains(article.Text, "漢字") || strings.Contains(article.Text, "かんじ") {
		t.Errorf("expected ruby readings to be stripped: %q", article.Text)
	}
	if article.URL != srv.URL+"/story" {
		t.Errorf("unexpected url %q", article.URL)
	}
}

func TestFetchDecodesDeclaredCharset(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().String(strings.Replace(articleHTML, `<meta charset="utf-8">`, "", 1))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(sjis))
	}))
	defer srv.Close()

	article, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(article.Text, "with 漢字 and more words") {
		t.Errorf("expected decoded kanji in text: %q", article.Text)
	}
}

func TestFetchRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := []byte(strings.Repeat("a", 1024*1024))
		for i := 0; i <= MaxBodySize/len(chunk); i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.Client(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected size limit error, got %v", err)
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	if _, err := Fetch(context.Background(), nil, "not a url"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "story.html")
	if err := os.WriteFile(htmlPath, []byte(articleHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	article, err := ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("ReadFile html: %v", err)
	}
	if !strings.Contains(article.Text, "third paragraph") {
		t.Errorf("html article text missing content: %q", article.Text)
	}
	if !strings.Contains(article.Text, "with 漢字 and") || strings.Contains(article.Text, "かんじ") {
		t.Errorf("expected utf-8 kanji without readings: %q", article.Text)
	}

	txtPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txtPath, []byte("plain text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	article, err = ReadFile(txtPath)
	if err != nil {
		t.Fatalf("ReadFile txt: %v", err)
	}
	if article.Title != "notes" || article.Text != "plain text\n" {
		t.Errorf("unexpected plain article %+v", article)
	}
}
