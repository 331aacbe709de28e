package app

import (
	"testing"

	"minter/internal/infra"
	"minter/internal/providers/archive"
	"minter/internal/storage"
)

func TestBuildArchiverSelectsBackend(t *testing.T) {
	none, err := buildArchiver(&infra.Config{})
	if err != nil || none != nil {
		t.Fatalf("expected no archiver, got %v (%v)", none, err)
	}

	file, err := buildArchiver(&infra.Config{ArchiveBackend: infra.ArchiveBackendFile, ArchivePath: t.TempDir()})
	if err != nil {
		t.Fatalf("file archiver: %v", err)
	}
	if _, ok := file.(*storage.FileStore); !ok {
		t.Fatalf("expected *storage.FileStore, got %T", file)
	}

	minio, err := buildArchiver(&infra.Config{
		ArchiveBackend: infra.ArchiveBackendMinio,
		MinioEndpoint:  "localhost:9000",
		MinioBucket:    "generated-images",
	})
	if err != nil {
		t.Fatalf("minio archiver: %v", err)
	}
	if _, ok := minio.(*archive.MinioArchive); !ok {
		t.Fatalf("expected *archive.MinioArchive, got %T", minio)
	}
}
