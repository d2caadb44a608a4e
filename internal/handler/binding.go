package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"boards/internal/repository"
	"boards/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	requestPart = "request"
	imagePart   = "image"

	// Room for the JSON part and multipart framing on top of the image itself.
	multipartOverhead = 1 << 20

	maxJSONBody = 1 << 20
)

var (
	// errInvalidRequest marks client input that failed binding or validation.
	errInvalidRequest = errors.New("invalid request")

	errRequestTooLarge = errors.New("request body too large")
)

// RegisterValidations installs the custom rules used by request DTOs on gin's validator.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("board_sort", func(fl validator.FieldLevel) bool {
		_, ok := repository.SortColumns[fl.Field().String()]
		return ok
	})
}

func parseBoardID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid board ID format", errInvalidRequest)
	}
	return uint(id), nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindBoardRequest reads the payload either from a JSON body or from the
// "request" part of a multipart form, plus the optional "image" part. The
// returned cleanup closes the image and removes multipart temp files.
func bindBoardRequest[T any](c *gin.Context, maxImageSize int64) (req T, upload *storage.Upload, cleanup func(), err error) {
	cleanup = func() {}

	if !isMultipart(c) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody)
		if err = c.ShouldBindJSON(&req); err != nil {
			if isTooLarge(err) {
				err = fmt.Errorf("%w: exceeds %d bytes", errRequestTooLarge, maxJSONBody)
				return
			}
			err = fmt.Errorf("%w: %s", errInvalidRequest, err.Error())
		}
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize+multipartOverhead)
	if err = c.Request.ParseMultipartForm(32 << 20); err != nil {
		if isTooLarge(err) {
			err = fmt.Errorf("%w: request exceeds %d bytes", storage.ErrImageTooLarge, maxImageSize+multipartOverhead)
			return
		}
		err = fmt.Errorf("%w: malformed multipart form", errInvalidRequest)
		return
	}
	form := c.Request.MultipartForm
	cleanup = func() { form.RemoveAll() }

	raw, err := requestPartBytes(form)
	if err != nil {
		return
	}
	if err = json.Unmarshal(raw, &req); err != nil {
		err = fmt.Errorf("%w: request part is not valid JSON", errInvalidRequest)
		return
	}
	if err = binding.Validator.ValidateStruct(&req); err != nil {
		err = fmt.Errorf("%w: %s", errInvalidRequest, err.Error())
		return
	}

	files := form.File[imagePart]
	if len(files) == 0 {
		return
	}
	header := files[0]
	file, openErr := header.Open()
	if openErr != nil {
		err = fmt.Errorf("failed to open uploaded image: %w", openErr)
		return
	}
	upload = &storage.Upload{Filename: header.Filename, Size: header.Size, Data: file}
	cleanup = func() {
		file.Close()
		form.RemoveAll()
	}
	return
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

// requestPartBytes accepts the payload as a plain form field or as a file
// part (clients that send it with Content-Type: application/json).
func requestPartBytes(form *multipart.Form) ([]byte, error) {
	if values := form.Value[requestPart]; len(values) > 0 && values[0] != "" {
		return []byte(values[0]), nil
	}
	if files := form.File[requestPart]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read request part", errInvalidRequest)
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read request part", errInvalidRequest)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("%w: missing %q part", errInvalidRequest, requestPart)
}
