package repository_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/repository/firestore"
	"github.com/secmon-lab/rolodex/pkg/repository/memory"
	"github.com/secmon-lab/rolodex/pkg/repository/sqlite"
)

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newSQLiteRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "rolodex.db")
	repo, err := sqlite.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create sqlite repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close sqlite repository: %v", err)
		}
	})
	return repo
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

var repositories = map[string]func(t *testing.T) interfaces.Repository{
	"memory":    newMemoryRepository,
	"sqlite":    newSQLiteRepository,
	"firestore": newFirestoreRepository,
}
