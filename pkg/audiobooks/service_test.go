package audiobooks

import (
	"context"
	"database/sql"
	"testing"

	"github.com/rodokubooks/rodoku/pkg/migrations"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createGenre(t *testing.T, db *bun.DB, name string) *models.Genre {
	t.Helper()
	genre := &models.Genre{Name: name}
	_, err := db.NewInsert().Model(genre).Exec(context.Background())
	require.NoError(t, err)
	return genre
}

func TestCreateAudiobook_WithGenres(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	genre := createGenre(t, db, "Fantasy")

	audiobook := &models.Audiobook{Title: "The Long Road"}
	err := svc.CreateAudiobook(ctx, audiobook, CreateAudiobookOptions{GenreIDs: []int{genre.ID}})
	require.NoError(t, err)
	require.NotZero(t, audiobook.ID)

	got, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: &audiobook.ID, IncludeRelations: true})
	require.NoError(t, err)
	assert.Equal(t, "The Long Road", got.Title)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "Fantasy", got.Genres[0].Genre.Name)
}

func TestRetrieveAudiobook_ChapterCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	audiobook := &models.Audiobook{Title: "Counted"}
	require.NoError(t, svc.CreateAudiobook(ctx, audiobook, CreateAudiobookOptions{}))

	for i := 1; i <= 3; i++ {
		chapter := &models.Chapter{AudiobookID: audiobook.ID, ChapterNumber: i, Title: "Ch"}
		_, err := db.NewInsert().Model(chapter).Exec(ctx)
		require.NoError(t, err)
	}

	got, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: &audiobook.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, got.ChapterCount)
}

func TestRetrieveAudiobook_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	id := 9999
	_, err := svc.RetrieveAudiobook(context.Background(), RetrieveAudiobookOptions{ID: &id})
	require.Error(t, err)
}

func TestListAudiobooks_Search(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	narrator := "Jane Doe"
	first := &models.Audiobook{Title: "Winter Tales", Narrator: &narrator}
	require.NoError(t, svc.CreateAudiobook(ctx, first, CreateAudiobookOptions{}))
	second := &models.Audiobook{Title: "Summer Songs"}
	require.NoError(t, svc.CreateAudiobook(ctx, second, CreateAudiobookOptions{}))

	search := "winter"
	audiobooks, total, err := svc.ListAudiobooksWithTotal(ctx, ListAudiobooksOptions{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, audiobooks, 1)
	assert.Equal(t, "Winter Tales", audiobooks[0].Title)

	// Narrator matches count too.
	search = "jane"
	audiobooks, total, err = svc.ListAudiobooksWithTotal(ctx, ListAudiobooksOptions{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, audiobooks, 1)
	assert.Equal(t, "Winter Tales", audiobooks[0].Title)
}

func TestUpdateAudiobook_ReplacesGenres(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	fantasy := createGenre(t, db, "Fantasy")
	scifi := createGenre(t, db, "Science Fiction")

	audiobook := &models.Audiobook{Title: "Shifting Shelves"}
	require.NoError(t, svc.CreateAudiobook(ctx, audiobook, CreateAudiobookOptions{GenreIDs: []int{fantasy.ID}}))

	audiobook.Title = "Shifted Shelves"
	genreIDs := []int{scifi.ID}
	err := svc.UpdateAudiobook(ctx, audiobook, UpdateAudiobookOptions{
		Columns:  []string{"title"},
		GenreIDs: &genreIDs,
	})
	require.NoError(t, err)

	got, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: &audiobook.ID, IncludeRelations: true})
	require.NoError(t, err)
	assert.Equal(t, "Shifted Shelves", got.Title)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "Science Fiction", got.Genres[0].Genre.Name)
}

func TestDeleteAudiobook_CascadesChaptersAndJoins(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	genre := createGenre(t, db, "Mystery")
	audiobook := &models.Audiobook{Title: "Gone"}
	require.NoError(t, svc.CreateAudiobook(ctx, audiobook, CreateAudiobookOptions{GenreIDs: []int{genre.ID}}))

	chapter := &models.Chapter{AudiobookID: audiobook.ID, ChapterNumber: 1, Title: "Ch"}
	_, err := db.NewInsert().Model(chapter).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAudiobook(ctx, audiobook.ID))

	chapterCount, err := db.NewSelect().Model((*models.Chapter)(nil)).Where("audiobook_id = ?", audiobook.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, chapterCount)

	joinCount, err := db.NewSelect().Model((*models.AudiobookGenre)(nil)).Where("audiobook_id = ?", audiobook.ID).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, joinCount)

	// The genre itself survives.
	genreCount, err := db.NewSelect().Model((*models.Genre)(nil)).Where("id = ?", genre.ID).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, genreCount)
}

func TestDeleteAudiobook_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	err := svc.DeleteAudiobook(context.Background(), 4242)
	require.Error(t, err)
}
