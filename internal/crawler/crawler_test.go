package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>AI Weekly</title>
  <link>https://www.example.com</link>
  <item>
    <title>New LLM released</title>
    <link>https://www.example.com/llm</link>
    <description><![CDATA[<p>A <b>large</b> language model.</p>]]></description>
    <pubDate>Tue, 04 Mar 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Undated post</title>
    <link>https://www.example.com/undated</link>
    <description>plain text</description>
  </item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query</title>
  <entry>
    <title>Paper One</title>
    <link href="http://arxiv.org/abs/1"/>
    <summary>Abstract one about neural networks.</summary>
    <published>2025-03-03T00:00:00Z</published>
  </entry>
  <entry>
    <title>Paper Two</title>
    <link href="http://arxiv.org/abs/2"/>
    <summary>Abstract two.</summary>
    <published>2025-03-02T00:00:00Z</published>
  </entry>
</feed>`

func newClient() *RSSClient {
	return NewRSSClient(5*time.Second, "test-agent")
}

func TestFetchFeed(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	articles, err := newClient().FetchFeed(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchFeed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("articles = %d", len(articles))
	}
	first := articles[0]
	if first.Title != "New LLM released" || first.Summary != "A large language model." {
		t.Fatalf("first = %+v", first)
	}
	if first.SourceDomain != "example.com" || first.Source != "AI Weekly" {
		t.Fatalf("source = %q / %q", first.Source, first.SourceDomain)
	}
	if first.Published == nil || first.Published.Year() != 2025 {
		t.Fatalf("published = %v", first.Published)
	}
	if articles[1].Published != nil {
		t.Fatalf("undated published = %v", articles[1].Published)
	}
}

func TestFetchFeedHTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := newClient().FetchFeed(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error")
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Write([]byte(`<rss version="2.0"><channel><title>Empty</title></channel></rss>`))
			return
		}
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	info, err := newClient().Probe(context.Background(), srv.URL)
	if err != nil || info.Entries != 2 || info.Title != "AI Weekly" {
		t.Fatalf("Probe = %+v, %v", info, err)
	}
	if _, err := newClient().Probe(context.Background(), srv.URL+"/empty"); !errors.Is(err, ErrEmptyFeed) {
		t.Fatalf("empty probe err = %v", err)
	}
}

func TestArxivSourceCapsPapers(t *testing.T) {
	t.Parallel()
	var (
		mu      sync.Mutex
		queries []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("search_query"))
		mu.Unlock()
		w.Write([]byte(sampleAtom))
	}))
	defer srv.Close()

	src := NewArxivSource(newClient(), srv.URL, []string{"cs.AI", "cs.LG"}, 3)
	papers, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("papers = %d, want 3", len(papers))
	}
	if papers[0].SourceDomain != "arxiv.org" || papers[2].Source != "arXiv cs.LG" {
		t.Fatalf("papers = %+v", papers)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 2 || queries[0] != "cat:cs.AI" {
		t.Fatalf("queries = %v", queries)
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("Machine learning systems keep improving. ", 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/article":
			w.Write([]byte(`<html><body><nav><p>` + long + `</p></nav><article><p>` + long + `</p><p>Share</p></article></body></html>`))
		case "/empty":
			w.Write([]byte(`<html><body><p>short</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewExtractor(5*time.Second, "test-agent")
	text, err := e.Extract(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if text != strings.TrimSpace(long) {
		t.Fatalf("text = %q", text)
	}
	if _, err := e.Extract(context.Background(), srv.URL+"/empty"); err == nil {
		t.Fatal("expected error for page without paragraphs")
	}
	if _, err := e.Extract(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestExtractParagraphsFallsBackToBody(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div><p>This paragraph is definitely longer than forty characters.</p></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if got := ExtractParagraphs(doc); got != "This paragraph is definitely longer than forty characters." {
		t.Fatalf("got %q", got)
	}
}

func TestHTMLToText(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"":                                   "",
		"  plain   text ":                    "plain text",
		"<p>Hello <em>world</em></p>":        "Hello world",
		"<div>a<script>x()</script> b</div>": "a b",
		"Fish &amp; chips":                   "Fish & chips",
	}
	for in, want := range tests {
		if got := HTMLToText(in); got != want {
			t.Errorf("HTMLToText(%q) = %q, want %q", in, got, want)
		}
	}
}
