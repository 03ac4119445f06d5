package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/agentry-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/agentry-lab/mnemosyne/pkg/repository/firestore"
)

// newFirestoreTestRepo creates a Firestore-backed repository for integration
// tests. Skipped unless TEST_FIRESTORE_PROJECT_ID is set. Each call uses a
// unique collection prefix so parallel runs do not interfere.
func newFirestoreTestRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
	repo, err := firestore.New(context.Background(), projectID, databaseID,
		firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Logf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}
