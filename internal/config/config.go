package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed classes.yaml
var classesYAML []byte

type Config struct {
	Google  GoogleConfig
	Face    FaceConfig
	Store   StoreConfig
	Cache   CacheConfig
	Admin   AdminConfig
	Classes ClassesConfig
}

type GoogleConfig struct {
	CredentialsFile string // service account JSON key file
	SpreadsheetID   string // spreadsheet holding one worksheet per class
	ParentFolderID  string // Drive folder that holds per-class photo folders
}

type FaceConfig struct {
	URL       string  // face embedding service, defaults to http://localhost:8000
	Dim       int     // embedding vector length, defaults to 128
	Threshold float64 // maximum accepted match distance, defaults to 0.45
	IndexMin  int     // store size at which the HNSW index kicks in
}

type StoreConfig struct {
	FacesPath    string // persisted embedding store
	RegistryPath string // persisted class registry
}

type CacheConfig struct {
	TTL       time.Duration // worksheet read cache lifetime
	RedisAddr string        // optional; empty means in-process cache
}

type AdminConfig struct {
	Secret string // shared admin code for the admin panel
}

type ClassesConfig struct {
	Defaults []string `yaml:"defaults"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads an environment variable and parses it as a positive duration.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var classes ClassesConfig
	if err := yaml.Unmarshal(classesYAML, &classes); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded classes.yaml: " + err.Error())
	}

	return &Config{
		Google: GoogleConfig{
			CredentialsFile: envString("GOOGLE_CREDENTIALS_FILE", "drive_credentials.json"),
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			ParentFolderID:  os.Getenv("DRIVE_PARENT_FOLDER_ID"),
		},
		Face: FaceConfig{
			URL:       envString("FACE_SERVICE_URL", "http://localhost:8000"),
			Dim:       envInt("FACE_EMBEDDING_DIM", 128),
			Threshold: envFloat("FACE_MATCH_THRESHOLD", 0.45),
			IndexMin:  envInt("FACE_INDEX_MIN", 512),
		},
		Store: StoreConfig{
			FacesPath:    envString("FACE_STORE_PATH", "known_faces.gob"),
			RegistryPath: envString("CLASS_REGISTRY_PATH", "class_folders.gob"),
		},
		Cache: CacheConfig{
			TTL:       envDuration("LEDGER_CACHE_TTL", 30*time.Second),
			RedisAddr: os.Getenv("REDIS_ADDR"),
		},
		Admin: AdminConfig{
			Secret: os.Getenv("ADMIN_SECRET"),
		},
		Classes: classes,
	}
}
