package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"boards/internal/logger"
	"boards/internal/model"
	"boards/internal/repository"
	"boards/internal/storage"
)

// ErrEmptyKeyword is returned by Search when the keyword is blank.
var ErrEmptyKeyword = errors.New("search keyword is empty")

type BoardStore interface {
	Create(ctx context.Context, board *model.Board, attach repository.AttachFunc) error
	GetByID(ctx context.Context, id uint) (*model.Board, error)
	List(ctx context.Context, q repository.PageQuery) ([]model.Board, int64, error)
	Search(ctx context.Context, keyword string, q repository.PageQuery) ([]model.Board, int64, error)
	Update(ctx context.Context, id uint, author string, changes repository.BoardChanges) (*model.Board, error)
	Delete(ctx context.Context, id uint, author string) (*model.Board, error)
}

type ImageStore interface {
	Save(boardID uint, upload *storage.Upload) (*storage.Stored, error)
	Open(name string) (io.ReadCloser, string, error)
	Delete(name string) error
}

type CreateBoardInput struct {
	Title   string
	Content string
	Author  string
}

type UpdateBoardInput struct {
	Title   string
	Content string
}

// PageRequest is a 1-based page of Size items ordered by Sort.
type PageRequest struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// query converts the page to an offset. An offset that would overflow int
// saturates, so the store sees it as past the last row.
func (p PageRequest) query() repository.PageQuery {
	page := max(p.Page, 1)
	offset := math.MaxInt
	if p.Size <= 0 || page-1 <= math.MaxInt/p.Size {
		offset = (page - 1) * max(p.Size, 0)
	}
	return repository.PageQuery{
		Offset: offset,
		Limit:  p.Size,
		SortBy: p.Sort,
		Desc:   p.Desc,
	}
}

type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalCount int64
	TotalPages int
}

func (p *Page[T]) HasPrev() bool { return p.Page > 1 }
func (p *Page[T]) HasNext() bool { return p.Page < p.TotalPages }

func newPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{Items: items, Page: req.Page, Size: req.Size, TotalCount: total, TotalPages: pages}
}

type BoardService struct {
	boards BoardStore
	images ImageStore
}

func NewBoardService(boards BoardStore, images ImageStore) *BoardService {
	return &BoardService{boards: boards, images: images}
}

func (s *BoardService) Register(ctx context.Context, in CreateBoardInput, upload *storage.Upload) (*model.Board, error) {
	board := &model.Board{
		Title:   in.Title,
		Content: in.Content,
		Author:  in.Author,
	}

	var stored *storage.Stored
	var attach repository.AttachFunc
	if upload != nil {
		attach = func(b *model.Board) error {
			var err error
			stored, err = s.images.Save(b.ID, upload)
			if err != nil {
				return err
			}
			b.ImageName = &stored.Name
			return nil
		}
	}

	if err := s.boards.Create(ctx, board, attach); err != nil {
		if stored != nil {
			s.removeImage(stored.Name)
		}
		return nil, fmt.Errorf("register board: %w", err)
	}

	logger.Log.Info("board registered", "board_id", board.ID, "author", board.Author, "has_image", board.HasImage())
	return board, nil
}

func (s *BoardService) Read(ctx context.Context, id uint) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read board %d: %w", id, err)
	}
	return board, nil
}

func (s *BoardService) Page(ctx context.Context, req PageRequest) (*Page[model.Board], error) {
	boards, total, err := s.boards.List(ctx, req.query())
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return newPage(boards, req, total), nil
}

func (s *BoardService) Search(ctx context.Context, keyword string, req PageRequest) (*Page[model.Board], error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	boards, total, err := s.boards.Search(ctx, keyword, req.query())
	if err != nil {
		return nil, fmt.Errorf("search boards: %w", err)
	}
	return newPage(boards, req, total), nil
}

// Update replaces title and content and, when upload is set, the image. The
// write only lands if caller still authors the board at that moment.
func (s *BoardService) Update(ctx context.Context, id uint, caller string, in UpdateBoardInput, upload *storage.Upload) (*model.Board, error) {
	current, err := s.boards.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update board %d: %w", id, err)
	}

	changes := repository.BoardChanges{
		Title:   in.Title,
		Content: in.Content,
	}

	var stored *storage.Stored
	if upload != nil {
		stored, err = s.images.Save(id, upload)
		if err != nil {
			return nil, fmt.Errorf("update board %d: %w", id, err)
		}
		changes.ImageName = &stored.Name
	}

	updated, err := s.boards.Update(ctx, id, caller, changes)
	if err != nil {
		if stored != nil {
			s.removeImage(stored.Name)
		}
		return nil, fmt.Errorf("update board %d: %w", id, err)
	}

	if stored != nil && current.HasImage() && *current.ImageName != stored.Name {
		s.removeImage(*current.ImageName)
	}

	logger.Log.Info("board updated", "board_id", id, "author", caller, "image_replaced", stored != nil)
	return updated, nil
}

func (s *BoardService) Delete(ctx context.Context, id uint, caller string) (*model.Board, error) {
	deleted, err := s.boards.Delete(ctx, id, caller)
	if err != nil {
		return nil, fmt.Errorf("delete board %d: %w", id, err)
	}
	if deleted.HasImage() {
		s.removeImage(*deleted.ImageName)
	}

	logger.Log.Info("board deleted", "board_id", id, "author", caller)
	return deleted, nil
}

// OpenImage returns the board's image and its content type.
func (s *BoardService) OpenImage(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	board, err := s.boards.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("open image of board %d: %w", id, err)
	}
	if !board.HasImage() {
		return nil, "", fmt.Errorf("open image of board %d: %w", id, storage.ErrImageNotFound)
	}
	return s.images.Open(*board.ImageName)
}

func (s *BoardService) removeImage(name string) {
	if err := s.images.Delete(name); err != nil {
		logger.Log.Warn("failed to remove board image", "image", name, "error", err)
	}
}
