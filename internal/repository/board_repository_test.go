package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"boards/internal/model"
	"boards/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var boardColumns = []string{"id", "title", "content", "author", "image_name", "created_at", "updated_at"}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, mock
}

func TestBoardRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	board := &model.Board{Title: "Hello", Content: "World", Author: "alice"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WithArgs("Hello", "World", "alice", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Act
	err := repo.Create(context.Background(), board, nil)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint(1), board.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Create_WithAttachment(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	board := &model.Board{Title: "Hello", Content: "World", Author: "alice"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec(`UPDATE "boards" SET "image_name"=.*WHERE "id" = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var seenID uint
	err := repo.Create(context.Background(), board, func(b *model.Board) error {
		seenID = b.ID
		name := "7/photo.png"
		b.ImageName = &name
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(7), seenID)
	assert.Equal(t, "7/photo.png", *board.ImageName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Create_AttachmentFailureRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	board := &model.Board{Title: "Hello", Content: "World", Author: "alice"}
	attachErr := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), board, func(*model.Board) error { return attachErr })

	assert.ErrorIs(t, err, attachErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByID_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows(boardColumns).AddRow(3, "Hello", "World", "alice", nil, now, now))

	board, err := repo.GetByID(context.Background(), 3)

	assert.NoError(t, err)
	require.NotNil(t, board)
	assert.Equal(t, uint(3), board.ID)
	assert.Equal(t, "alice", board.Author)
	assert.Nil(t, board.ImageName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = .* LIMIT`).
		WillReturnRows(sqlmock.NewRows(boardColumns))

	board, err := repo.GetByID(context.Background(), 404)

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_GetByID_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE id = .* LIMIT`).
		WillReturnError(assert.AnError)

	board, err := repo.GetByID(context.Background(), 1)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_List(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "boards" ORDER BY "created_at" DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(boardColumns).
			AddRow(12, "B", "b", "bob", nil, now, now).
			AddRow(11, "A", "a", "alice", nil, now, now))

	boards, total, err := repo.List(context.Background(), repository.PageQuery{Offset: 0, Limit: 2, SortBy: "created_at", Desc: true})

	assert.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, boards, 2)
	assert.Equal(t, uint(12), boards[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_List_UnknownSortFallsBackToID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "boards" ORDER BY "id" LIMIT`).
		WillReturnRows(sqlmock.NewRows(boardColumns))

	_, _, err := repo.List(context.Background(), repository.PageQuery{Limit: 10, SortBy: "author; DROP TABLE boards"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_List_PastLastPageSkipsSelect(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	boards, total, err := repo.List(context.Background(), repository.PageQuery{Offset: 10, Limit: 10})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, boards)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Search_EscapesWildcards(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	now := time.Now()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "boards" WHERE title ILIKE .* OR content ILIKE`).
		WithArgs(`%50\%\_off\_%`, `%50\%\_off\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "boards" WHERE .*title ILIKE .* OR content ILIKE .* ORDER BY "id" DESC`).
		WillReturnRows(sqlmock.NewRows(boardColumns).AddRow(1, "50%_off_ sale", "", "alice", nil, now, now))

	boards, total, err := repo.Search(context.Background(), "50%_off_", repository.PageQuery{Limit: 10, Desc: true})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, boards, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Update(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "boards" SET .* WHERE id = .* AND author = .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(boardColumns).AddRow(1, "Hi", "World", "alice", nil, now, now))
	mock.ExpectCommit()

	board, err := repo.Update(context.Background(), 1, "alice", repository.BoardChanges{Title: "Hi", Content: "World"})

	assert.NoError(t, err)
	require.NotNil(t, board)
	assert.Equal(t, "Hi", board.Title)
	assert.Equal(t, "alice", board.Author)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Update_NotOwned(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE "boards" SET .* WHERE id = .* AND author = .* RETURNING \*`).
		WillReturnRows(sqlmock.NewRows(boardColumns))
	mock.ExpectCommit()

	board, err := repo.Update(context.Background(), 1, "bob", repository.BoardChanges{Title: "Hi", Content: "World"})

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)
	now := time.Now()
	image := "1/a.png"

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "boards" WHERE id = .* AND author = .* RETURNING \*`).
		WithArgs(1, "alice").
		WillReturnRows(sqlmock.NewRows(boardColumns).AddRow(1, "Hello", "World", "alice", image, now, now))
	mock.ExpectCommit()

	board, err := repo.Delete(context.Background(), 1, "alice")

	assert.NoError(t, err)
	require.NotNil(t, board)
	assert.Equal(t, "Hello", board.Title)
	assert.Equal(t, image, *board.ImageName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_NotOwned(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM "boards" WHERE id = .* AND author = .* RETURNING \*`).
		WithArgs(1, "bob").
		WillReturnRows(sqlmock.NewRows(boardColumns))
	mock.ExpectCommit()

	board, err := repo.Delete(context.Background(), 1, "bob")

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}
