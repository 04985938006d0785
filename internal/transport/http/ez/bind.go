package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	resp "go-gin-gorm-auth/internal/transport/http/response"
)

var setupOnce sync.Once

func setupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// maxbytes 按字节计长度；max 按字符计，多字节密码会超过 bcrypt 的 72 字节
		_ = v.RegisterValidation("maxbytes", maxBytes)
		// 错误详情里用 json / uri 名而不是 Go 字段名
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "uri"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

func bind(c *gin.Context, b Binder, in any) error {
	setupValidator()

	// 先 body 后路径参数，body 里同名字段不能覆盖 :id
	if b == BindJSON || b == BindURIJSON {
		if err := decodeJSON(c.Request, in); err != nil {
			return err
		}
	}
	if b == BindURI || b == BindURIJSON {
		params := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(in, params, "uri"); err != nil {
			return BadRequest(resp.MsgInvalidBody)
		}
	}
	if b == BindNone {
		return nil
	}

	if n, ok := in.(Normalizer); ok {
		n.Normalize()
	}
	if err := binding.Validator.ValidateStruct(in); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) {
			return &ValidationError{Details: fieldErrors(ves)}
		}
		return BadRequest(resp.MsgValidation)
	}
	return nil
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	return len(f.String()) <= n
}

func decodeJSON(r *http.Request, in any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(in)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		// 对象后面只允许空白
		var extra json.RawMessage
		if err = dec.Decode(&extra); errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			return BadRequest(resp.MsgInvalidBody)
		}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &AErr{Code: http.StatusRequestEntityTooLarge}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Details: []resp.FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonKind(typeErr.Type)),
		}}}
	}
	return BadRequest(resp.MsgInvalidBody)
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}

func fieldErrors(ves validator.ValidationErrors) []resp.FieldError {
	out := make([]resp.FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, resp.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "uuid", "uuid4":
		return f + " must be a valid UUID"
	case "oneof":
		return f + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if isString(fe) {
			return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", f, fe.Param())
	case "max":
		if isString(fe) {
			return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	}
	return f + " is invalid"
}

func isString(fe validator.FieldError) bool {
	k := fe.Kind()
	if k == reflect.Pointer && fe.Type() != nil {
		k = fe.Type().Elem().Kind()
	}
	return k == reflect.String
}
