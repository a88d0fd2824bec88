package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/models"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "db", "prefs.db"))
	if err != nil {
		t.Fatal(err)
	}
	y, err := NewYAMLStore(filepath.Join(dir, "yaml", "prefs.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = sqlite.Close()
		_ = y.Close()
	})
	return map[string]Store{BackendSQLite: sqlite, BackendYAML: y}
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := store.CreateProfile(ctx, "")
			if err != nil {
				t.Fatal(err)
			}
			if !ValidID(p.ID) || p.Name != "default" || p.Preferences.Theme != models.ThemeDark {
				t.Errorf("created = %+v", p)
			}
			if p.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}

			p.Preferences.Expansions = []models.ExpansionID{models.ExpansionPoK, "bogus"}
			p.Preferences.IncludeRetired = true
			p.Preferences.AddRecent("sabotage")
			if err := store.SaveProfile(ctx, p); err != nil {
				t.Fatal(err)
			}

			got, err := store.GetProfile(ctx, p.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Preferences.Expansions, []models.ExpansionID{models.ExpansionPoK}) {
				t.Errorf("expansions = %v", got.Preferences.Expansions)
			}
			if !got.Preferences.IncludeRetired || !reflect.DeepEqual(got.Preferences.RecentSearches, []string{"sabotage"}) {
				t.Errorf("preferences = %+v", got.Preferences)
			}

			second, err := store.CreateProfile(ctx, "table two")
			if err != nil {
				t.Fatal(err)
			}
			list, err := store.ListProfiles(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 2 {
				t.Fatalf("list = %d profiles", len(list))
			}

			if err := store.DeleteProfile(ctx, second.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := store.GetProfile(ctx, second.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("get deleted: err = %v, want ErrNotFound", err)
			}
			if err := store.DeleteProfile(ctx, second.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("delete twice: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestYAMLStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	s, err := NewYAMLStore(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := s.CreateProfile(ctx, "me")
	if err != nil {
		t.Fatal(err)
	}
	p.Preferences.Theme = models.ThemeLight
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewYAMLStore(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "me" || got.Preferences.Theme != models.ThemeLight {
		t.Errorf("reopened = %+v", got)
	}

	if err := os.WriteFile(path, []byte("profiles: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAMLStore(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendSQLite, BackendYAML} {
		s, err := Open(backend, filepath.Join(dir, "prefs."+backend))
		if err != nil {
			t.Fatalf("Open(%s): %v", backend, err)
		}
		_ = s.Close()
	}
	if _, err := Open("redis", filepath.Join(dir, "x")); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m, err := NewManager(ctx, store, "", WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	id := m.Profile().ID

	var changes int
	m.OnChange(func(p models.Preferences) { changes++ })

	if err := m.AddRecent(ctx, "war sun"); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRecent(ctx, "war sun"); err != nil {
		t.Fatal(err)
	}
	if changes != 1 {
		t.Errorf("changes = %d, want 1 (no-op update skipped)", changes)
	}

	again, err := NewManager(ctx, store, "")
	if err != nil {
		t.Fatal(err)
	}
	if again.Profile().ID != id {
		t.Error("empty id should pick the existing profile")
	}
	if got := again.Preferences().RecentSearches; !reflect.DeepEqual(got, []string{"war sun"}) {
		t.Errorf("recent = %v", got)
	}

	fresh := "7d444840-9dc0-11d1-b245-5ffdce74fad2"
	m2, err := NewManager(ctx, store, fresh)
	if err != nil {
		t.Fatal(err)
	}
	if m2.Profile().ID != fresh {
		t.Errorf("id = %s, want %s", m2.Profile().ID, fresh)
	}
	if _, err := NewManager(ctx, store, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("invalid id: err = %v", err)
	}
}

func TestPathSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("12345"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "b.csv"), []byte("123"), 0600); err != nil {
		t.Fatal(err)
	}
	n, err := PathSize(dir, filepath.Join(dir, "missing"), "")
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("PathSize = %d, want 8", n)
	}
}

func TestManager_OnChangeCallbacks(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	m, err := NewManager(ctx, store, "")
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	m.OnChange(func(p models.Preferences) { got = append(got, "first:"+p.RecentSearches[0]) })
	m.OnChange(func(p models.Preferences) {
		got = append(got, "second:"+p.RecentSearches[0])
		// callbacks run unlocked, so reading the manager here must not block
		_ = m.Preferences()
	})
	if err := m.AddRecent(ctx, "war sun"); err != nil {
		t.Fatal(err)
	}
	want := []string{"first:war sun", "second:war sun"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("callbacks = %v, want %v", got, want)
	}
}
