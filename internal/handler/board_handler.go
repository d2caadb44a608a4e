package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"boards/internal/logger"
	"boards/internal/middleware"
	"boards/internal/model"
	"boards/internal/repository"
	"boards/internal/response"
	"boards/internal/service"
	"boards/internal/storage"

	"github.com/gin-gonic/gin"
)

type BoardService interface {
	Register(ctx context.Context, in service.CreateBoardInput, upload *storage.Upload) (*model.Board, error)
	Read(ctx context.Context, id uint) (*model.Board, error)
	Page(ctx context.Context, req service.PageRequest) (*service.Page[model.Board], error)
	Search(ctx context.Context, keyword string, req service.PageRequest) (*service.Page[model.Board], error)
	CheckOwnership(ctx context.Context, id uint, caller string) (service.OwnershipResult, *model.Board, error)
	Update(ctx context.Context, id uint, caller string, in service.UpdateBoardInput, upload *storage.Upload) (*model.Board, error)
	Delete(ctx context.Context, id uint, caller string) (*model.Board, error)
	OpenImage(ctx context.Context, id uint) (io.ReadCloser, string, error)
}

type BoardHandler struct {
	boards       BoardService
	maxImageSize int64
}

func NewBoardHandler(boards BoardService, maxImageSize int64) *BoardHandler {
	return &BoardHandler{
		boards:       boards,
		maxImageSize: maxImageSize,
	}
}

// Register creates a board.
//
// @Summary      Create a board
// @Tags         Boards
// @Accept       json,mpfd
// @Produce      json
// @Param        request  formData  string  true   "CreateBoardRequest as JSON"
// @Param        image    formData  file    false  "Attached image"
// @Success      200  {object}  response.APIResponse
// @Failure      400  {object}  response.APIResponse
// @Failure      413  {object}  response.APIResponse
// @Failure      415  {object}  response.APIResponse
// @Router       /v1/boards [post]
func (h *BoardHandler) Register(c *gin.Context) {
	req, upload, cleanup, err := bindBoardRequest[CreateBoardRequest](c, h.maxImageSize)
	defer cleanup()
	if err != nil {
		h.respondError(c, err)
		return
	}

	_, err = h.boards.Register(c.Request.Context(), service.CreateBoardInput{
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
	}, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Read returns a single board.
//
// @Summary      Get a board
// @Tags         Boards
// @Produce      json
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  response.APIResponse{data=BoardResponse}
// @Failure      404  {object}  response.APIResponse
// @Router       /v1/boards/{id} [get]
func (h *BoardHandler) Read(c *gin.Context) {
	id, err := parseBoardID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	board, err := h.boards.Read(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, newBoardResponse(board))
}

// Page lists boards.
//
// @Summary      List boards
// @Tags         Boards
// @Produce      json
// @Param        page       query  int     false  "1-based page"  minimum(1) maximum(1000000)
// @Param        size       query  int     false  "Page size"     minimum(1) maximum(100)
// @Param        sort       query  string  false  "Sort column"   Enums(id, title, created_at, updated_at)
// @Param        direction  query  string  false  "Sort direction" Enums(asc, desc)
// @Success      200  {object}  response.APIResponse{data=PageResponse}
// @Failure      400  {object}  response.APIResponse
// @Router       /v1/boards [get]
func (h *BoardHandler) Page(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %s", errInvalidRequest, err.Error()))
		return
	}

	page, err := h.boards.Page(c.Request.Context(), req.toService())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, newPageResponse(page))
}

// PageSearch lists boards whose title or content contains keyword.
//
// @Summary      Search boards
// @Tags         Boards
// @Produce      json
// @Param        keyword    path   string  true   "Keyword"
// @Param        page       query  int     false  "1-based page"
// @Param        size       query  int     false  "Page size"
// @Param        sort       query  string  false  "Sort column"
// @Param        direction  query  string  false  "Sort direction"
// @Success      200  {object}  response.APIResponse{data=PageResponse}
// @Failure      400  {object}  response.APIResponse
// @Router       /v1/boards/search/{keyword} [get]
func (h *BoardHandler) PageSearch(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %s", errInvalidRequest, err.Error()))
		return
	}

	page, err := h.boards.Search(c.Request.Context(), c.Param("keyword"), req.toService())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, newPageResponse(page))
}

// Update replaces a board's title, content and optionally its image.
//
// @Summary      Update a board
// @Tags         Boards
// @Accept       mpfd,json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int     true   "Board ID"
// @Param        request  formData  string  true   "UpdateBoardRequest as JSON"
// @Param        image    formData  file    false  "Replacement image"
// @Success      200  {object}  response.APIResponse{data=BoardUpdateResponse}
// @Failure      401  {object}  response.APIResponse
// @Failure      403  {object}  response.APIResponse
// @Failure      404  {object}  response.APIResponse
// @Router       /v1/boards/{id} [put]
func (h *BoardHandler) Update(c *gin.Context) {
	caller, id, ok := h.authorize(c)
	if !ok {
		return
	}

	req, upload, cleanup, err := bindBoardRequest[UpdateBoardRequest](c, h.maxImageSize)
	defer cleanup()
	if err != nil {
		h.respondError(c, err)
		return
	}

	board, err := h.boards.Update(c.Request.Context(), id, caller, service.UpdateBoardInput{
		Title:   req.Title,
		Content: req.Content,
	}, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, newBoardUpdateResponse(board))
}

// Delete removes a board.
//
// @Summary      Delete a board
// @Tags         Boards
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  response.APIResponse{data=BoardDeleteResponse}
// @Failure      401  {object}  response.APIResponse
// @Failure      403  {object}  response.APIResponse
// @Failure      404  {object}  response.APIResponse
// @Router       /v1/boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	caller, id, ok := h.authorize(c)
	if !ok {
		return
	}

	board, err := h.boards.Delete(c.Request.Context(), id, caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.OK(c, newBoardDeleteResponse(board))
}

// Image streams the board's attached image.
//
// @Summary      Get a board image
// @Tags         Boards
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Param        id   path  int  true  "Board ID"
// @Success      200
// @Failure      404  {object}  response.APIResponse
// @Router       /v1/boards/{id}/image [get]
func (h *BoardHandler) Image(c *gin.Context) {
	id, err := parseBoardID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rc, contentType, err := h.boards.OpenImage(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// authorize resolves the caller and the target board id, and checks that the
// caller wrote the board. It writes the error response itself when it fails.
func (h *BoardHandler) authorize(c *gin.Context) (string, uint, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "Not authenticated")
		return "", 0, false
	}

	id, err := parseBoardID(c)
	if err != nil {
		h.respondError(c, err)
		return "", 0, false
	}

	result, _, err := h.boards.CheckOwnership(c.Request.Context(), id, caller)
	if err != nil {
		h.respondError(c, err)
		return "", 0, false
	}

	switch result {
	case service.OwnershipGranted:
		return caller, id, true
	case service.OwnershipNotFound:
		response.Fail(c, http.StatusNotFound, response.CodeBoardNotFound, "Board not found")
	default:
		response.Fail(c, http.StatusForbidden, response.CodeNotMatchedUser, "Only the author can modify this board")
	}
	return "", 0, false
}

func (h *BoardHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, service.ErrEmptyKeyword):
		response.Fail(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
	case errors.Is(err, repository.ErrBoardNotFound):
		response.Fail(c, http.StatusNotFound, response.CodeBoardNotFound, "Board not found")
	case errors.Is(err, storage.ErrImageNotFound):
		response.Fail(c, http.StatusNotFound, response.CodeImageNotFound, "Image not found")
	case errors.Is(err, storage.ErrImageTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.CodeImageTooLarge, err.Error())
	case errors.Is(err, errRequestTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.CodeRequestTooLarge, err.Error())
	case errors.Is(err, storage.ErrUnsupportedImage):
		response.Fail(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedImage, err.Error())
	default:
		_ = c.Error(err)
		logger.Log.Error("board request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}
