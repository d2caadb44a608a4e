package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the envelope.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotMatchedUser   = "NOT_MATCHED_USER"
	CodeBoardNotFound    = "BOARD_NOT_FOUND"
	CodeImageNotFound    = "IMAGE_NOT_FOUND"
	CodeImageTooLarge    = "IMAGE_TOO_LARGE"
	CodeUnsupportedImage = "UNSUPPORTED_IMAGE"
	CodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIResponse is the envelope around every API payload.
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func Failure(code, message string) APIResponse {
	return APIResponse{Error: &ErrorBody{Code: code, Message: message}}
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success(data))
}

func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Failure(code, message))
}

// Abort writes a failure envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Failure(code, message))
}
