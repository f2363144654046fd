package util

import (
	"exam_portal_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorBody{Error: message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

// BusinessError maps exam-flow violations to 400 and everything else to a
// generic 500 with an opaque detail blob; raw store errors never reach the
// client verbatim.
func BusinessError(c *gin.Context, err error) {
	if IsBusinessError(err) {
		BadRequest(c, err.Error())
		return
	}
	LogInternalError(c, err)
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("internal server error",
		zap.String("path", c.FullPath()),
		zap.String("requestId", c.GetString(RequestIDKey)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorBody{
		Error:   "internal server error",
		Details: c.GetString(RequestIDKey),
	})
}
