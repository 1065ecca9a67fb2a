package refdata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/tidemark/tidemark/internal/platform"
	"github.com/tidemark/tidemark/pkg/config"
	"github.com/tidemark/tidemark/pkg/scoretable"
)

func TestLocalSourcePutRead(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalSource(dir)
	ctx := context.Background()

	data := []byte("impact,pressure\n0,0\n1,5\n")
	if err := s.PutTable(ctx, "installation/footprint_pressure.csv", data); err != nil {
		t.Fatalf("PutTable: %v", err)
	}

	got, err := s.ReadTable(ctx, "installation/footprint_pressure.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("ReadTable = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "installation", "footprint_pressure.csv")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalSourceNotFound(t *testing.T) {
	s := NewLocalSource(t.TempDir())

	_, err := s.ReadTable(context.Background(), "installation/missing.csv")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalSourceRejectsEscapingPaths(t *testing.T) {
	s := NewLocalSource(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"../secrets.csv", "/etc/passwd"} {
		if _, err := s.ReadTable(ctx, name); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("ReadTable(%q): expected path error, got %v", name, err)
		}
		if err := s.PutTable(ctx, name, nil); err == nil {
			t.Errorf("PutTable(%q): expected path error", name)
		}
	}
}

func TestLocalSourceWalk(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalSource(dir)
	ctx := context.Background()
	for _, name := range []string{"hydrodynamics/energymod_pressure.csv", "installation/turbidity_receptor.xlsx", "README.md"} {
		if err := s.PutTable(ctx, name, []byte("x")); err != nil {
			t.Fatalf("PutTable: %v", err)
		}
	}

	var got []string
	if err := s.Walk(func(name string) error {
		got = append(got, name)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(got)
	want := []string{"hydrodynamics/energymod_pressure.csv", "installation/turbidity_receptor.xlsx"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Walk = %v, want %v", got, want)
	}
}

// countingSource records how many reads reach the backing store.
type countingSource struct {
	mu    sync.Mutex
	src   scoretable.MapSource
	reads map[string]int
}

func (c *countingSource) ReadTable(ctx context.Context, name string) ([]byte, error) {
	c.mu.Lock()
	c.reads[name]++
	c.mu.Unlock()
	return c.src.ReadTable(ctx, name)
}

func newCountingSource() *countingSource {
	return &countingSource{
		src: scoretable.MapSource{
			"a.csv": []byte("a"),
			"b.csv": []byte("b"),
			"c.csv": []byte("c"),
		},
		reads: map[string]int{},
	}
}

func TestCacheReadsThroughOnce(t *testing.T) {
	src := newCountingSource()
	c := NewCache(src, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.ReadTable(ctx, "a.csv")
		if err != nil {
			t.Fatalf("ReadTable: %v", err)
		}
		if string(got) != "a" {
			t.Errorf("ReadTable = %q", got)
		}
	}
	if src.reads["a.csv"] != 1 {
		t.Errorf("expected 1 backing read, got %d", src.reads["a.csv"])
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	src := newCountingSource()
	c := NewCache(src, 2)
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.csv", "a.csv", "c.csv"} {
		if _, err := c.ReadTable(ctx, name); err != nil {
			t.Fatalf("ReadTable(%s): %v", name, err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	// b was the least recently used when c arrived.
	if _, err := c.ReadTable(ctx, "a.csv"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ReadTable(ctx, "b.csv"); err != nil {
		t.Fatal(err)
	}
	if src.reads["a.csv"] != 1 {
		t.Errorf("expected a.csv to stay cached, got %d reads", src.reads["a.csv"])
	}
	if src.reads["b.csv"] != 2 {
		t.Errorf("expected b.csv to be evicted and re-read, got %d reads", src.reads["b.csv"])
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	src := newCountingSource()
	c := NewCache(src, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.ReadTable(ctx, "missing.csv"); err == nil {
			t.Fatal("expected error")
		}
	}
	if src.reads["missing.csv"] != 2 {
		t.Errorf("expected failures to reach the source every time, got %d", src.reads["missing.csv"])
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestCacheServesScoreTables(t *testing.T) {
	dir := t.TempDir()
	local := NewLocalSource(dir)
	ctx := context.Background()
	if err := local.PutTable(ctx, "hydrodynamics/energymod_pressure.csv", []byte("function result,score\n0,0\n1,5\n")); err != nil {
		t.Fatal(err)
	}

	tbl, err := scoretable.LoadPressure(ctx, NewCache(local, 0), "hydrodynamics/energymod_pressure.csv")
	if err != nil {
		t.Fatalf("LoadPressure: %v", err)
	}
	got, err := tbl.Interpolate(0.5)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if got != 2.5 {
		t.Errorf("Interpolate(0.5) = %g, want 2.5", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.DataConfig{Source: config.SourceLocal, Dir: "tables"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	local, ok := s.(*LocalSource)
	if !ok || local.BaseDir != "tables" {
		t.Errorf("expected LocalSource at tables, got %#v", s)
	}
	if err := Close(s); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := Open(ctx, config.DataConfig{Source: "ftp"}); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"", "installation/a.csv", "installation/a.csv"},
		{"tables", "installation/a.csv", "tables/installation/a.csv"},
		{"tables/", "installation/a.csv", "tables/installation/a.csv"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.prefix, tt.name); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestPostgresSource(t *testing.T) {
	url := os.Getenv("TIDEMARK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TIDEMARK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	if err := platform.AutoMigrate(s.DB()); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	if err := s.PutTable(ctx, "test/roundtrip.csv", []byte("v1")); err != nil {
		t.Fatalf("PutTable: %v", err)
	}
	if err := s.PutTable(ctx, "test/roundtrip.csv", []byte("v2")); err != nil {
		t.Fatalf("PutTable overwrite: %v", err)
	}
	got, err := s.ReadTable(ctx, "test/roundtrip.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("ReadTable = %q, want v2", got)
	}
	if _, err := s.ReadTable(ctx, "test/absent.csv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
