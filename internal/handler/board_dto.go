package handler

import (
	"fmt"
	"time"

	"boards/internal/model"
	"boards/internal/service"
)

const (
	defaultPage = 1
	defaultSize = 10
	defaultSort = "id"
)

type CreateBoardRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
	Author  string `json:"author" binding:"required,max=100"`
}

type UpdateBoardRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// PageRequest is bound from the query string of list and search requests.
type PageRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	Size      int    `form:"size" binding:"omitempty,min=1,max=100"`
	Sort      string `form:"sort" binding:"omitempty,board_sort"`
	Direction string `form:"direction" binding:"omitempty,oneof=asc desc"`
}

func (p PageRequest) toService() service.PageRequest {
	req := service.PageRequest{
		Page: p.Page,
		Size: p.Size,
		Sort: p.Sort,
		Desc: p.Direction != "asc",
	}
	if req.Page == 0 {
		req.Page = defaultPage
	}
	if req.Size == 0 {
		req.Size = defaultSize
	}
	if req.Sort == "" {
		req.Sort = defaultSort
	}
	return req
}

type BoardResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Author    string  `json:"author"`
	ImageURL  *string `json:"image_url"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type BoardSummaryResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	ImageURL  *string `json:"image_url"`
	CreatedAt string  `json:"created_at"`
}

type BoardUpdateResponse struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Author    string  `json:"author"`
	ImageURL  *string `json:"image_url"`
	UpdatedAt string  `json:"updated_at"`
}

type BoardDeleteResponse struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

type PageResponse struct {
	Items      []BoardSummaryResponse `json:"items"`
	Page       int                    `json:"page"`
	Size       int                    `json:"size"`
	TotalCount int64                  `json:"total_count"`
	TotalPages int                    `json:"total_pages"`
	HasPrev    bool                   `json:"has_prev"`
	HasNext    bool                   `json:"has_next"`
}

func imageURL(b *model.Board) *string {
	if !b.HasImage() {
		return nil
	}
	url := fmt.Sprintf("/v1/boards/%d/image", b.ID)
	return &url
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func newBoardResponse(b *model.Board) BoardResponse {
	return BoardResponse{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Author:    b.Author,
		ImageURL:  imageURL(b),
		CreatedAt: formatTime(b.CreatedAt),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func newBoardUpdateResponse(b *model.Board) BoardUpdateResponse {
	return BoardUpdateResponse{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Author:    b.Author,
		ImageURL:  imageURL(b),
		UpdatedAt: formatTime(b.UpdatedAt),
	}
}

func newBoardDeleteResponse(b *model.Board) BoardDeleteResponse {
	return BoardDeleteResponse{ID: b.ID, Title: b.Title, Author: b.Author}
}

func newPageResponse(p *service.Page[model.Board]) PageResponse {
	items := make([]BoardSummaryResponse, len(p.Items))
	for i := range p.Items {
		b := &p.Items[i]
		items[i] = BoardSummaryResponse{
			ID:        b.ID,
			Title:     b.Title,
			Author:    b.Author,
			ImageURL:  imageURL(b),
			CreatedAt: formatTime(b.CreatedAt),
		}
	}
	return PageResponse{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
	}
}
