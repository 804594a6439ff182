package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// fakeFolderCreator records created folders and can be told to fail.
type fakeFolderCreator struct {
	created []string
	err     error
}

func (f *fakeFolderCreator) CreateFolder(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, name)
	return "folder-" + name, nil
}

func TestClassRegistry_LoadMissingFile(t *testing.T) {
	r := NewClassRegistry(filepath.Join(t.TempDir(), "classes.gob"))

	if err := r.Load(); err != nil {
		t.Fatalf("expected missing file to load as empty registry, got %v", err)
	}

	if got := r.Names(); len(got) != 0 {
		t.Errorf("expected no classes, got %v", got)
	}
}

func TestClassRegistry_EnsureDefaultsAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.gob")
	r := NewClassRegistry(path)
	folders := &fakeFolderCreator{}

	defaults := []string{"Database System", "Computer Network", "Web Programming"}
	if err := r.EnsureDefaults(context.Background(), defaults, folders); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}

	if len(folders.created) != 3 {
		t.Errorf("expected 3 folders created, got %v", folders.created)
	}

	// A second pass must not create anything new.
	if err := r.EnsureDefaults(context.Background(), defaults, folders); err != nil {
		t.Fatalf("second EnsureDefaults failed: %v", err)
	}
	if len(folders.created) != 3 {
		t.Errorf("defaults recreated on second pass: %v", folders.created)
	}

	reloaded := NewClassRegistry(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	want := []string{"Computer Network", "Database System", "Web Programming"}
	if got := reloaded.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v after reload, got %v", want, got)
	}

	id, err := reloaded.FolderID("Database System")
	if err != nil {
		t.Fatalf("FolderID failed: %v", err)
	}
	if id != "folder-Database System" {
		t.Errorf("unexpected folder ID %q", id)
	}
}

func TestClassRegistry_Add(t *testing.T) {
	r := NewClassRegistry(filepath.Join(t.TempDir(), "classes.gob"))
	folders := &fakeFolderCreator{}

	id, err := r.Add(context.Background(), "Machine Learning", folders)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id != "folder-Machine Learning" {
		t.Errorf("unexpected folder ID %q", id)
	}

	t.Run("duplicate name", func(t *testing.T) {
		if _, err := r.Add(context.Background(), "Machine Learning", folders); !errors.Is(err, ErrClassExists) {
			t.Errorf("expected ErrClassExists, got %v", err)
		}
	})

	t.Run("duplicate after normalization", func(t *testing.T) {
		if _, err := r.Add(context.Background(), "  machine   LEARNING ", folders); !errors.Is(err, ErrClassExists) {
			t.Errorf("expected ErrClassExists for normalized duplicate, got %v", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := r.Add(context.Background(), "   ", folders)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("folder creation failure leaves registry unchanged", func(t *testing.T) {
		failing := &fakeFolderCreator{err: fmt.Errorf("drive is down")}
		if _, err := r.Add(context.Background(), "Data Mining", failing); err == nil {
			t.Fatal("expected error")
		}
		if _, err := r.FolderID("Data Mining"); !errors.Is(err, ErrClassNotFound) {
			t.Errorf("failed add must not register the class")
		}
	})
}

func TestClassRegistry_Remove(t *testing.T) {
	r := NewClassRegistry(filepath.Join(t.TempDir(), "classes.gob"))
	folders := &fakeFolderCreator{}

	if _, err := r.Add(context.Background(), "Machine Learning", folders); err != nil {
		t.Fatal(err)
	}

	if err := r.Remove("machine learning"); err != nil {
		t.Fatalf("Remove with normalized name failed: %v", err)
	}
	if got := r.Names(); len(got) != 0 {
		t.Errorf("class still present after remove: %v", got)
	}

	t.Run("missing class", func(t *testing.T) {
		if _, err := r.Add(context.Background(), "Data Mining", folders); err != nil {
			t.Fatal(err)
		}
		before := r.Names()

		if err := r.Remove("No Such Class"); !errors.Is(err, ErrClassNotFound) {
			t.Fatalf("expected ErrClassNotFound, got %v", err)
		}

		if got := r.Names(); !reflect.DeepEqual(got, before) {
			t.Errorf("registry changed by failed remove: %v != %v", got, before)
		}
	})
}

func TestClassRegistry_Resolve(t *testing.T) {
	r := NewClassRegistry(filepath.Join(t.TempDir(), "classes.gob"))
	folders := &fakeFolderCreator{}

	if _, err := r.Add(context.Background(), "Réseaux Avancés", folders); err != nil {
		t.Fatal(err)
	}

	got, err := r.Resolve("reseaux avances")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != "Réseaux Avancés" {
		t.Errorf("expected stored display name, got %q", got)
	}

	if _, err := r.Resolve("unknown"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("expected ErrClassNotFound, got %v", err)
	}
}

func TestClassRegistry_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.gob")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}

	r := NewClassRegistry(path)
	if err := r.Load(); !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("expected ErrCorruptStore, got %v", err)
	}
}

func TestNormalizeClassName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Database System", "database system"},
		{"  Database   System  ", "database system"},
		{"RÉSEAUX Avancés", "reseaux avances"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeClassName(tc.in); got != tc.want {
			t.Errorf("NormalizeClassName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
