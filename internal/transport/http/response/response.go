package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误体：{"error": "...", "details": ...}
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 失败响应（msg 为空时取状态码默认文案）
func Error(status int, msg string) ErrorBody {
	if msg == "" {
		msg = CodeMsgMap[status]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return ErrorBody{Error: msg}
}

func Validation(details []FieldError) ErrorBody {
	return ErrorBody{Error: MsgValidation, Details: details}
}

// Abort 写错误并终止后续 handler
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}
