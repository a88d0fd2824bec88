package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/catalog"
	"github.com/hyperjump/ti4lookup/internal/models"
	"github.com/hyperjump/ti4lookup/internal/search"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncesDirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := NewWatcher(dir, func() { calls.Add(1) }, WithDebounce(50*time.Millisecond), WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		write(t, filepath.Join(dir, "units.csv"), "name\nCarrier\n")
	}
	write(t, filepath.Join(dir, "notes.txt"), "ignored")
	write(t, filepath.Join(dir, "~$cards.xlsx"), "lock")

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange calls = %d, want 1", n)
	}
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "cards.xlsx")
	write(t, book, "x")

	dw, err := NewWatcher(dir, func() {})
	if err != nil {
		t.Fatal(err)
	}
	fw, err := NewWatcher(book, func() {})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		w    *Watcher
		path string
		want bool
	}{
		{dw, "units.csv", true},
		{dw, "CARDS.XLSX", true},
		{dw, ".units.csv.swp", false},
		{dw, "~$cards.xlsx", false},
		{dw, "readme.md", false},
		{fw, "cards.xlsx", true},
		{fw, "units.csv", false},
	}
	for _, tt := range tests {
		if got := tt.w.relevant(filepath.Join(dir, tt.path)); got != tt.want {
			t.Errorf("relevant(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := NewWatcher(filepath.Join(dir, "missing"), func() {}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestReloader(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "action_cards.csv"), "name,effect,version\nSabotage,Cancel an action card.,base game\n")

	engine, err := search.NewEngine(catalog.New(&models.Tables{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReloader(dir, engine, zap.NewNop())
	if err := r.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := len(engine.Catalog().Cards); n != 1 {
		t.Fatalf("cards after reload = %d, want 1", n)
	}

	// a source with no tables keeps the previous catalog
	if err := os.Remove(filepath.Join(dir, "action_cards.csv")); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(context.Background()); err == nil {
		t.Error("expected error for empty source")
	}
	if n := len(engine.Catalog().Cards); n != 1 {
		t.Errorf("cards after failed reload = %d, want 1", n)
	}
}

func TestWatcher_ReloadsEngine(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "action_cards.csv"), "name,version\nSabotage,base game\n")

	engine, err := search.NewEngine(catalog.New(&models.Tables{}), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := NewReloader(dir, engine, nil)
	w, err := NewWatcher(dir, r.OnChange(time.Second), WithDebounce(30*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	write(t, filepath.Join(dir, "action_cards.csv"), "name,version\nSabotage,base game\nDirect Hit,base game\n")
	waitFor(t, func() bool { return len(engine.Catalog().Cards) == 2 })
}
