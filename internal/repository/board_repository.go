package repository

import (
	"context"
	"errors"
	"strings"

	"boards/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortColumns lists the columns a page may be ordered by.
var SortColumns = map[string]struct{}{
	"id":         {},
	"title":      {},
	"created_at": {},
	"updated_at": {},
}

// PageQuery is an offset/limit window plus ordering.
type PageQuery struct {
	Offset int
	Limit  int
	SortBy string
	Desc   bool
}

func (q PageQuery) order() clause.OrderByColumn {
	column := q.SortBy
	if _, ok := SortColumns[column]; !ok {
		column = "id"
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Desc}
}

// BoardChanges holds the mutable fields of a board. A nil ImageName leaves
// the stored image reference untouched.
type BoardChanges struct {
	Title     string
	Content   string
	ImageName *string
}

// AttachFunc runs inside the create transaction once the board has its id.
// Returning an error rolls the insert back.
type AttachFunc func(board *model.Board) error

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board, attach AttachFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		if attach == nil {
			return nil
		}
		if err := attach(board); err != nil {
			return err
		}
		if !board.HasImage() {
			return nil
		}
		return tx.Model(board).Update("image_name", board.ImageName).Error
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id uint) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

func (r *BoardRepository) List(ctx context.Context, q PageQuery) ([]model.Board, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&model.Board{}), q)
}

// Search matches keyword against title and content, case-insensitively.
func (r *BoardRepository) Search(ctx context.Context, keyword string, q PageQuery) ([]model.Board, int64, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	scope := r.db.WithContext(ctx).Model(&model.Board{}).
		Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	return r.page(ctx, scope, q)
}

func (r *BoardRepository) page(ctx context.Context, scope *gorm.DB, q PageQuery) ([]model.Board, int64, error) {
	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	boards := make([]model.Board, 0, q.Limit)
	if total == 0 || int64(q.Offset) >= total {
		return boards, total, nil
	}

	err := scope.Session(&gorm.Session{}).
		Order(q.order()).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&boards).Error
	if err != nil {
		return nil, 0, err
	}
	return boards, total, nil
}

// Update applies changes only if the board still belongs to author, and
// returns the row as stored after the update.
func (r *BoardRepository) Update(ctx context.Context, id uint, author string, changes BoardChanges) (*model.Board, error) {
	values := map[string]interface{}{
		"title":   changes.Title,
		"content": changes.Content,
	}
	if changes.ImageName != nil {
		values["image_name"] = *changes.ImageName
	}

	var board model.Board
	result := r.db.WithContext(ctx).
		Model(&board).
		Clauses(clause.Returning{}).
		Where("id = ? AND author = ?", id, author).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBoardNotFound
	}
	return &board, nil
}

// Delete removes the board only if it still belongs to author, and returns
// the row as it was before deletion.
func (r *BoardRepository) Delete(ctx context.Context, id uint, author string) (*model.Board, error) {
	var board model.Board
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("id = ? AND author = ?", id, author).
		Delete(&board)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrBoardNotFound
	}
	return &board, nil
}

// Ping checks the underlying connection.
func (r *BoardRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
