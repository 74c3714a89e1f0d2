package books

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookscanner/internal/entities"
	"github.com/mrlokans/bookscanner/internal/records"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestBook(t *testing.T, repo *Repository, isbn string) *entities.Book {
	b := &entities.Book{ISBN: isbn, Title: "Title " + isbn, Author: "Author " + isbn}
	require.NoError(t, repo.Upsert(context.Background(), b))
	require.NotZero(t, b.ID)
	return b
}

func TestRepository_UpsertAssignsIDs(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestBook(t, repo, "111")
	second := createTestBook(t, repo, "222")

	assert.Greater(t, second.ID, first.ID)
}

func TestRepository_UpsertReplacesOnConflict(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	book := createTestBook(t, repo, "111")

	replacement := &entities.Book{ID: book.ID, ISBN: "111", Title: "New title", Author: "New author"}
	require.NoError(t, repo.Upsert(ctx, replacement))

	got, err := repo.GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "New author", got.Author)
	assert.Empty(t, got.CoverURL)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	for _, isbn := range []string{"111", "222", "333"} {
		createTestBook(t, repo, isbn)
	}

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "333", list[0].ISBN)
	assert.Equal(t, "222", list[1].ISBN)
	assert.Equal(t, "111", list[2].ISBN)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestRepository_UpsertMany(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	existing := createTestBook(t, repo, "111")

	batch := []entities.Book{
		{ID: existing.ID, ISBN: "111", Title: "Replaced"},
		{ISBN: "222", Title: "Two"},
		{ISBN: "333", Title: "Three"},
	}
	require.NoError(t, repo.UpsertMany(ctx, batch))
	assert.NotZero(t, batch[1].ID)
	assert.NotZero(t, batch[2].ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	got, err := repo.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Replaced", got.Title)
}

func TestRepository_DeleteMany(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	one := createTestBook(t, repo, "111")
	two := createTestBook(t, repo, "222")
	three := createTestBook(t, repo, "333")

	require.NoError(t, repo.DeleteMany(ctx, []entities.Book{*one, *three}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, two.ID, list[0].ID)
}

func TestRepository_DeleteManyEmpty(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestBook(t, repo, "111")
	require.NoError(t, repo.DeleteMany(context.Background(), nil))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_ImplementsPersistentStore(t *testing.T) {
	var _ records.PersistentStore = (*Repository)(nil)
}
