package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 实现后即可挂到 API 分组
type APIModule interface{ MountAPI(*gin.RouterGroup) }

// 可选：数值越小越先挂，不实现默认 100
type prioritizer interface{ Priority() int }

// Modules 收集待挂载模块；每个引擎一份，测试之间互不影响
type Modules struct {
	mods []APIModule
}

func (m *Modules) Register(mods ...APIModule) {
	m.mods = append(m.mods, mods...)
}

func (m *Modules) MountAll(g *gin.RouterGroup) {
	mods := append([]APIModule(nil), m.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, mod := range mods {
		mod.MountAPI(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
