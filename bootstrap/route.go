package bootstrap

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mabar/app/http/middlewares"
	"mabar/routes"
)

// SetupRoute 路由初始化
// 1. 注册全局中间件
// 2. 注册 API 路由
// 3. 配置 404 处理器
func SetupRoute(router *gin.Engine) {
	// 注册全局中间件
	registerGlobalMiddleWare(router)

	// 注册 API 路由
	routes.RegisterAPIRoutes(router)

	// 配置 404 路由处理器
	setup404Handler(router)
}

// registerGlobalMiddleWare 注册全局中间件，作用于所有请求
func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),   // 记录请求日志
		middlewares.Recovery(), // 在发生 panic 时恢复
	)
}

// setup404Handler 配置 404 请求处理器
func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		acceptString := c.Request.Header.Get("Accept")

		if strings.Contains(acceptString, "text/html") {
			c.String(http.StatusNotFound, "404 Not Found")
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"error_code":    404,
				"error_message": "Route not found. Please check the URL and request method.",
			})
		}
	})
}
