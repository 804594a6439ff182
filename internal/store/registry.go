package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrClassNotFound means the named class is not in the registry.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassExists means a class with that name is already registered.
	ErrClassExists = errors.New("class already exists")
)

const registryFormatVersion = 1

// registryFile is the on-disk layout of the class registry.
type registryFile struct {
	Version int
	Folders map[string]string
}

// FolderCreator creates a durable photo folder for a class and returns its
// storage location ID.
type FolderCreator interface {
	CreateFolder(ctx context.Context, name string) (string, error)
}

// ClassRegistry maps class names to their durable photo folder IDs.
// Lookups are case and diacritic insensitive; the stored display name is
// whatever the class was created with.
type ClassRegistry struct {
	mu      sync.RWMutex
	path    string
	folders map[string]string
}

// NewClassRegistry creates an empty registry backed by the given file.
func NewClassRegistry(path string) *ClassRegistry {
	return &ClassRegistry{path: path, folders: make(map[string]string)}
}

// Load reads the persisted registry. A missing file leaves the registry
// empty; an unreadable or wrong-version file returns ErrCorruptStore.
func (r *ClassRegistry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		r.folders = make(map[string]string)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading class registry %s: %w", r.path, err)
	}

	var file registryFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&file); err != nil {
		return fmt.Errorf("decoding class registry %s: %w", r.path, ErrCorruptStore)
	}
	if file.Version != registryFormatVersion {
		return fmt.Errorf("class registry %s has version %d: %w", r.path, file.Version, ErrCorruptStore)
	}

	if file.Folders == nil {
		file.Folders = make(map[string]string)
	}
	r.folders = file.Folders
	return nil
}

// EnsureDefaults creates folders for any default class missing from the
// registry and persists the result. Existing entries are left untouched.
// A removed default class reappears on the next boot.
func (r *ClassRegistry) EnsureDefaults(ctx context.Context, names []string, folders FolderCreator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, name := range names {
		if _, ok := r.folders[name]; ok {
			continue
		}
		id, err := folders.CreateFolder(ctx, name)
		if err != nil {
			return fmt.Errorf("creating folder for default class %q: %w", name, err)
		}
		r.folders[name] = id
		changed = true
	}

	if !changed {
		return nil
	}
	return r.persist()
}

// Add registers a new class, creating its photo folder first. Returns the
// new folder ID. Empty names and duplicates are rejected before any folder
// is created.
func (r *ClassRegistry) Add(ctx context.Context, name string, folders FolderCreator) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "class", Reason: "required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(name); ok {
		return "", ErrClassExists
	}

	id, err := folders.CreateFolder(ctx, name)
	if err != nil {
		return "", fmt.Errorf("creating folder for class %q: %w", name, err)
	}

	r.folders[name] = id
	if err := r.persist(); err != nil {
		delete(r.folders, name)
		return "", err
	}
	return id, nil
}

// Remove deletes a class from the registry. Removing a class that is not
// registered returns ErrClassNotFound and leaves the registry unchanged.
// The photo folder itself is kept; only the mapping goes away.
func (r *ClassRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.lookup(name)
	if !ok {
		return ErrClassNotFound
	}

	id := r.folders[key]
	delete(r.folders, key)
	if err := r.persist(); err != nil {
		r.folders[key] = id
		return err
	}
	return nil
}

// FolderID returns the folder ID for a class.
func (r *ClassRegistry) FolderID(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.lookup(name)
	if !ok {
		return "", ErrClassNotFound
	}
	return r.folders[key], nil
}

// Resolve returns the stored display name for a class.
func (r *ClassRegistry) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.lookup(name)
	if !ok {
		return "", ErrClassNotFound
	}
	return key, nil
}

// Names returns all class names in sorted order.
func (r *ClassRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.folders))
	for name := range r.folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup finds the stored key matching name, first exactly and then by
// normalized comparison. Caller must hold at least a read lock.
func (r *ClassRegistry) lookup(name string) (string, bool) {
	if _, ok := r.folders[name]; ok {
		return name, true
	}
	want := NormalizeClassName(name)
	for key := range r.folders {
		if NormalizeClassName(key) == want {
			return key, true
		}
	}
	return "", false
}

// persist writes the registry via temp file and rename.
// Caller must hold the write lock.
func (r *ClassRegistry) persist() error {
	var buf bytes.Buffer
	file := registryFile{Version: registryFormatVersion, Folders: r.folders}
	if err := gob.NewEncoder(&buf).Encode(&file); err != nil {
		return fmt.Errorf("encoding class registry: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing class registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing class registry: %w", err)
	}
	return nil
}

// NormalizeClassName normalizes a class name for comparison
// (lowercase, no diacritics, collapsed whitespace).
func NormalizeClassName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}
