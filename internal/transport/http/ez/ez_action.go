package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EZ 包一层路由分组，统一绑定、校验与错误映射
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON    Binder = "json"     // 只绑 body
	BindURI     Binder = "uri"      // 只绑路径参数
	BindURIJSON Binder = "uri+json" // 路径参数 + body
	BindNone    Binder = "none"
)

// Normalizer 入参在校验前做清洗（trim、小写等）
type Normalizer interface{ Normalize() }

// Action 一个接口的定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string // 例："/users/:id"
	Binder  Binder
	Status  int               // 成功状态码，默认 200
	Use     []gin.HandlerFunc // 路由级中间件（鉴权、角色）
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			e.fail(c, err)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	chain := append(append([]gin.HandlerFunc{}, a.Use...), h)
	e.g.Handle(strings.ToUpper(a.Method), a.Path, chain...)
}
