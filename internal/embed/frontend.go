package embed

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

//go:embed ui/dist/*
var embeddedFiles embed.FS

// GetFrontendFS 获取前端文件系统（用于嵌入）
func GetFrontendFS() fs.FS {
	return embeddedFiles
}

// SetupRouter 设置前端静态文件路由
// 必须在 API 路由之后调用，gzip 只作用于之后注册的路由
func SetupRouter(r *gin.Engine) {
	r.Use(gzip.Gzip(gzip.BestCompression))

	frontendFS := GetFrontendFS()

	assetsFS, err := fs.Sub(frontendFS, "ui/dist/assets")
	if err == nil {
		r.GET("/assets/*filepath", gin.WrapH(http.StripPrefix("/assets", http.FileServer(http.FS(assetsFS)))))
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		favicon, err := fs.ReadFile(frontendFS, "ui/dist/favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", favicon)
	})

	r.NoRoute(func(c *gin.Context) {
		// 非 GET 请求不回退到页面
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		indexHTML, err := fs.ReadFile(frontendFS, "ui/dist/index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "Failed to load index.html")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
}
