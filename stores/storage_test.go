package stores

import (
	"building-planner/config"
	"context"
	"path/filepath"
	"testing"
)

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "default is memory", cfg: config.Config{}},
		{name: "memory", cfg: config.Config{StorageType: config.StorageMemory}},
		{name: "filesystem", cfg: config.Config{StorageType: config.StorageFilesystem, LocalStoragePath: filepath.Join(dir, "fs")}},
		{name: "sqlite", cfg: config.Config{StorageType: config.StorageSQLite, DataSourceName: filepath.Join(dir, "plans.db")}},
		{name: "s3 without bucket", cfg: config.Config{StorageType: config.StorageS3}, wantErr: true},
		{name: "unknown", cfg: config.Config{StorageType: "floppy"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(context.Background(), &tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewStore() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore() failed: %v", err)
			}

			d, err := store.Create(context.Background(), "Smoke", "")
			if err != nil {
				t.Fatalf("Create() failed: %v", err)
			}
			if _, err := store.Get(context.Background(), d.ID); err != nil {
				t.Errorf("Get() failed: %v", err)
			}
		})
	}
}
