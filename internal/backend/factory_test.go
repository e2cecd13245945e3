package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aceiro/internal/config"
	"aceiro/internal/sources"
	"aceiro/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "memory"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "csv", DataDir: "/srv/data"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != CSVBackend || cfg.DataDirectory != "/srv/data" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestCreateCSVBackend(t *testing.T) {
	dir := t.TempDir()
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: CSVBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()
	if got := sources.Describe(res.Reader); got != "csv:"+dir {
		t.Fatalf("Describe = %s", got)
	}

	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: CSVBackend, DataDirectory: filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing data directory")
	}
}

func TestCreateSQLiteBackendRequiresSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aceiro.db")
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err == nil || !strings.Contains(err.Error(), "aceiroctl import") {
		t.Fatalf("expected missing snapshot error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("factory must not create the snapshot")
	}

	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	repo.Close()

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	if got := strings.Join(GetBackendTypeStrings(), ","); got != "csv,sqlite,sheets" {
		t.Fatalf("GetBackendTypeStrings = %s", got)
	}
}
