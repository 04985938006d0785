package ez

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/domain"
	mdw "go-gin-gorm-auth/internal/transport/http/middleware"
	resp "go-gin-gorm-auth/internal/transport/http/response"
)

// AErr 显式指定状态码和对外文案；Err 只进日志
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

type ValidationError struct {
	Details []resp.FieldError
}

func (e *ValidationError) Error() string { return resp.MsgValidation }

// 领域错误 -> 状态码
var domainStatus = []struct {
	err    error
	status int
	msg    string
}{
	{domain.ErrDuplicateEmail, http.StatusConflict, resp.MsgEmailExists},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, resp.MsgInvalidCredentials},
	{domain.ErrUserNotFound, http.StatusNotFound, resp.MsgUserNotFound},
	{domain.ErrNoValidFields, http.StatusBadRequest, resp.MsgNoValidFields},
	{domain.ErrUnauthorized, http.StatusUnauthorized, resp.MsgUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden, resp.MsgForbidden},
}

func (e EZ) fail(c *gin.Context, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusBadRequest, resp.Validation(ve.Details))
		return
	}

	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= http.StatusInternalServerError {
			e.logInternal(c, err)
			resp.Abort(c, ae.Code, "")
			return
		}
		resp.Abort(c, ae.Code, ae.Msg)
		return
	}

	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			resp.Abort(c, m.status, m.msg)
			return
		}
	}

	e.logInternal(c, err)
	resp.Abort(c, http.StatusInternalServerError, resp.MsgInternal)
}

func (e EZ) logInternal(c *gin.Context, err error) {
	e.log.Error("request failed",
		zap.String("rid", c.GetString(mdw.KeyRequestID)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
}
