package automation

import (
	"ai-news-posts/config"
	"ai-news-posts/internal/ai"
	"ai-news-posts/internal/ledger"
	"ai-news-posts/internal/models"
	"ai-news-posts/internal/storage"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var runNow = time.Date(2025, 3, 4, 9, 30, 0, 0, time.Local)

type fakeFetcher struct {
	items []models.Article
	calls int32
}

func (f *fakeFetcher) FetchFeed(context.Context, string) ([]models.Article, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.items, nil
}

type fakeText struct {
	err     error
	block   chan struct{}
	started chan struct{}
	inputs  []models.Article
}

func (f *fakeText) Generate(_ context.Context, a models.Article) (ai.Result, error) {
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	f.inputs = append(f.inputs, a)
	if f.err != nil {
		return ai.Result{}, f.err
	}
	return ai.Result{Text: "Post about " + a.Title, Provider: "fake"}, nil
}

type fakeImages struct {
	dir       string
	err       error
	preferred string
}

func (f *fakeImages) Generate(_ context.Context, _ models.Article, _ string, preferred string) (string, error) {
	f.preferred = preferred
	if f.err != nil {
		return "", f.err
	}
	tmp, err := os.CreateTemp(f.dir, "temp_ai_image_*.png")
	if err != nil {
		return "", err
	}
	tmp.Write([]byte("\x89PNG"))
	tmp.Close()
	return tmp.Name(), nil
}

type failingStore struct{ calls int }

func (s *failingStore) Save(context.Context, string, models.Article, string, string) (models.GeneratedPost, error) {
	s.calls++
	return models.GeneratedPost{}, errors.New("disk full")
}

type fakeExtractor struct {
	text string
	err  error
}

func (e fakeExtractor) Extract(context.Context, string) (string, error) { return e.text, e.err }

type fixture struct {
	dir     string
	paths   config.PathsConfig
	fetcher *fakeFetcher
	text    *fakeText
	images  *fakeImages
	store   Store
}

const testConfig = `{
	"schedule": {"execution_time": "08:00", "posts_per_day": 2, "enabled": true},
	"ai_sources": {"rss_feeds": ["https://feeds.example/ai"]},
	"selection_criteria": {"ai_keywords": ["llm"], "exclude_keywords": [], "min_article_length": 10, "requests_per_second": 100, "fetch_full_text": false},
	"generation": {"image_provider": "google"}
}`

func published(h int) *time.Time {
	t := runNow.Add(-time.Duration(h) * time.Hour)
	return &t
}

func newFixture(t *testing.T, cfgJSON string) *fixture {
	t.Helper()
	dir := t.TempDir()
	paths := config.PathsConfig{
		AutomationConfig: filepath.Join(dir, "automation_config.json"),
		FeedsFile:        filepath.Join(dir, "feeds.txt"),
		ProcessedFile:    filepath.Join(dir, "processed_articles.txt"),
		OutputDir:        filepath.Join(dir, "generated_posts"),
	}
	if cfgJSON != "" {
		if err := os.WriteFile(paths.AutomationConfig, []byte(cfgJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	local := storage.NewLocal(paths.OutputDir, nil, log.New(io.Discard))
	local.SetClock(func() time.Time { return runNow })

	return &fixture{
		dir:   dir,
		paths: paths,
		fetcher: &fakeFetcher{items: []models.Article{
			{Title: "LLM A", Link: "https://news.example/a", Summary: "llm news number one", Published: published(1)},
			{Title: "LLM B", Link: "https://news.example/b", Summary: "llm news number two", Published: published(10)},
			{Title: "LLM C", Link: "https://news.example/c", Summary: "llm news number three", Published: published(100)},
		}},
		text:   &fakeText{},
		images: &fakeImages{dir: dir},
		store:  local,
	}
}

func (f *fixture) runner(extractor Extractor) *Runner {
	r := New(Deps{
		Paths:     f.paths,
		Fetcher:   f.fetcher,
		Extractor: extractor,
		Text:      f.text,
		Images:    f.images,
		Store:     f.store,
		Logger:    log.New(io.Discard),
	})
	r.now = func() time.Time { return runNow }
	return r
}

func TestRunOnceGeneratesAndRecords(t *testing.T) {
	f := newFixture(t, testConfig)
	r := f.runner(nil)

	report, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if report.Collected != 3 || report.Selected != 2 || len(report.Posts) != 2 || len(report.Skips) != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Posts[0].Link != "https://news.example/a" || report.Posts[1].Link != "https://news.example/b" {
		t.Fatalf("posts = %s, %s", report.Posts[0].Link, report.Posts[1].Link)
	}
	if report.Posts[0].TextProvider != "fake" || report.Posts[0].ImagePath == "" {
		t.Fatalf("post = %+v", report.Posts[0])
	}
	if f.images.preferred != "google" {
		t.Fatalf("preferred image provider = %q", f.images.preferred)
	}

	led, err := ledger.Load(f.paths.ProcessedFile)
	if err != nil {
		t.Fatal(err)
	}
	if led.Len() != 2 || !led.Contains("https://news.example/a") || !led.Contains("https://news.example/b") {
		t.Fatalf("ledger has %d entries", led.Len())
	}

	dayDir := filepath.Join(f.paths.OutputDir, "2025", "03", "04")
	entries, _ := os.ReadDir(dayDir)
	if len(entries) != 4 {
		t.Fatalf("output files = %d, want 4", len(entries))
	}
	leftovers, _ := filepath.Glob(filepath.Join(f.dir, "temp_ai_image_*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary images left: %v", leftovers)
	}
}

func TestRunOnceIsIdempotentWithLedger(t *testing.T) {
	f := newFixture(t, testConfig)
	r := f.runner(nil)

	if _, err := r.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Posts) != 1 || second.Posts[0].Link != "https://news.example/c" {
		t.Fatalf("second run posts = %+v", second.Posts)
	}
	third, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if third.Collected != 0 || len(third.Posts) != 0 {
		t.Fatalf("third run = %+v", third)
	}
}

func TestRunOnceConfigErrorIsFatal(t *testing.T) {
	f := newFixture(t, "")
	r := f.runner(nil)

	if _, err := r.RunOnce(context.Background()); err == nil {
		t.Fatal("expected configuration error")
	}
	if atomic.LoadInt32(&f.fetcher.calls) != 0 {
		t.Fatal("feeds must not be fetched when configuration is invalid")
	}

	if err := os.WriteFile(f.paths.AutomationConfig, []byte(`{"ai_sources": {}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RunOnce(context.Background()); !errors.Is(err, config.ErrMissingSection) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunOncePersistFailureSkipsLedger(t *testing.T) {
	f := newFixture(t, testConfig)
	store := &failingStore{}
	f.store = store
	r := f.runner(nil)

	report, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(report.Posts) != 0 || len(report.Skips) != 2 || report.Skips[0].Stage != StatePersist {
		t.Fatalf("report = %+v", report)
	}
	if store.calls != 2 {
		t.Fatalf("store calls = %d", store.calls)
	}
	led, _ := ledger.Load(f.paths.ProcessedFile)
	if led.Len() != 0 {
		t.Fatalf("ledger = %d entries, want 0", led.Len())
	}
}

func TestRunOnceTextFailureSkipsArticle(t *testing.T) {
	f := newFixture(t, testConfig)
	f.text.err = errors.New("template broken")
	r := f.runner(nil)

	report, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Posts) != 0 || len(report.Skips) != 2 || report.Skips[0].Stage != StateGenerateText {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunOnceImageFailureStillSaves(t *testing.T) {
	f := newFixture(t, testConfig)
	f.images.err = errors.New("all providers down")
	r := f.runner(nil)

	report, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Posts) != 2 || report.Posts[0].ImagePath != "" {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunOnceNoCandidates(t *testing.T) {
	f := newFixture(t, testConfig)
	f.fetcher.items = nil
	r := f.runner(nil)

	report, err := r.RunOnce(context.Background())
	if err != nil || report.Collected != 0 || len(report.Posts) != 0 {
		t.Fatalf("report = %+v, err = %v", report, err)
	}
}

func TestFullTextExtraction(t *testing.T) {
	cfg := strings.Replace(testConfig, `"fetch_full_text": false`, `"fetch_full_text": true`, 1)

	f := newFixture(t, cfg)
	if _, err := f.runner(fakeExtractor{text: "full body"}).RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.text.inputs) != 2 || f.text.inputs[0].Content != "full body" {
		t.Fatalf("inputs = %+v", f.text.inputs)
	}

	g := newFixture(t, cfg)
	if _, err := g.runner(fakeExtractor{err: errors.New("paywall")}).RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(g.text.inputs) != 2 || g.text.inputs[0].Content != "" || g.text.inputs[0].Summary == "" {
		t.Fatalf("fallback inputs = %+v", g.text.inputs)
	}
}

func TestRunsAreSerialized(t *testing.T) {
	f := newFixture(t, testConfig)
	f.text.block = make(chan struct{})
	f.text.started = make(chan struct{})
	started := f.text.started
	r := f.runner(nil)

	done := make(chan error, 1)
	go func() {
		_, err := r.RunOnce(context.Background())
		done <- err
	}()
	<-started

	if _, err := r.RunOnce(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("concurrent RunOnce err = %v", err)
	}
	if _, err := r.GenerateFor(context.Background(), models.Article{Title: "x", Link: "https://x"}); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("concurrent GenerateFor err = %v", err)
	}
	close(f.text.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
}

func TestGenerateForRecordsLedger(t *testing.T) {
	f := newFixture(t, testConfig)
	r := f.runner(nil)

	post, err := r.GenerateFor(context.Background(), models.Article{
		Title:   "Manual pick",
		Link:    "https://www.manual.example/post",
		Summary: "chosen by hand",
	})
	if err != nil {
		t.Fatalf("GenerateFor: %v", err)
	}
	if post.SourceDomain != "manual.example" || !strings.HasSuffix(post.DocumentPath, ".md") {
		t.Fatalf("post = %+v", post)
	}
	led, _ := ledger.Load(f.paths.ProcessedFile)
	if !led.Contains("https://www.manual.example/post") {
		t.Fatal("manual generation must be recorded")
	}

	if _, err := r.GenerateFor(context.Background(), models.Article{Title: "empty", Link: "https://e.example"}); err == nil {
		t.Fatal("article without summary or body must fail")
	}
}

func TestCandidatesMergesRegistryFeeds(t *testing.T) {
	f := newFixture(t, testConfig)
	if err := os.WriteFile(f.paths.FeedsFile, []byte("# extra\nhttps://feeds.example/ai\nhttps://other.example/rss\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := f.runner(nil)

	got, err := r.Candidates(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&f.fetcher.calls) != 2 {
		t.Fatalf("feeds fetched = %d, want 2", f.fetcher.calls)
	}
	if len(got) != 3 || got[0].Link != "https://news.example/a" || got[0].Score < got[2].Score {
		t.Fatalf("candidates = %+v", got)
	}
}
