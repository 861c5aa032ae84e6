package feeds

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	t.Parallel()
	got := Parse([]byte("# AI feeds\nhttps://a.example/rss\n\n   \n  https://b.example/rss  \n#https://c.example/rss\n"))
	want := []string{"https://a.example/rss", "https://b.example/rss"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %v, want %v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	urls, err := Load(filepath.Join(t.TempDir(), "feeds.txt"))
	if err != nil || len(urls) != 0 {
		t.Fatalf("Load = %v, %v", urls, err)
	}
}

func TestRegistryAddRemovePersist(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "feeds.txt")
	if err := os.WriteFile(path, []byte("# comment\nhttps://a.example/rss\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := r.Add("https://b.example/rss"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add("https://b.example/rss"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate Add err = %v", err)
	}
	if err := r.Add("ftp://c.example"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("invalid Add err = %v", err)
	}
	if err := r.Remove("https://a.example/rss"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := r.Remove("https://a.example/rss"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove err = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"https://b.example/rss"}; !reflect.DeepEqual(reloaded, want) {
		t.Fatalf("reloaded = %v, want %v", reloaded, want)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()
	got := Merge([]string{"a", "b"}, []string{"b", " ", "c", "a"})
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v, want %v", got, want)
	}
}
