package routes

import (
	"mabar/app/http/controllers/api/v1/place"
	"mabar/app/http/controllers/api/v1/spin"
	"mabar/app/http/controllers/api/v1/voucher"
	"mabar/app/http/middlewares"

	"github.com/gin-gonic/gin"
)

// 路由限流配置
const (
	// 全局限流：每小时每IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 抽取限流：每分钟每IP 30 请求，额度校验在业务层，这里只挡刷接口
	PerformSpinLimit = "30-M"
	// 核销限流：每分钟每IP 60 请求
	RedeemLimit = "60-M"
	// 查询类限流：每分钟每IP 300 请求
	QueryLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.Recovery(),
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	sc := spin.NewSpinController()
	vc := voucher.NewVoucherController()
	pc := place.NewPlaceController()

	// 健康检查
	// GET /v1/health
	v1.GET("/health", sc.HealthCheck)

	// 转盘相关路由
	{
		// 执行一次抽取
		// POST /v1/spins
		v1.POST("/spins",
			middlewares.LimitPerRoute(PerformSpinLimit),
			sc.Store,
		)

		// 查询当天额度状态
		// GET /v1/users/:user_id/spin-status
		v1.GET("/users/:user_id/spin-status",
			middlewares.LimitPerRoute(QueryLimit),
			sc.GetStatus,
		)

		// 抽取流水
		// GET /v1/users/:user_id/spin-history
		v1.GET("/users/:user_id/spin-history",
			middlewares.LimitPerRoute(QueryLimit),
			sc.GetHistory,
		)
	}

	// 优惠券相关路由
	{
		// 核销优惠券
		// POST /v1/vouchers/:id/redeem
		v1.POST("/vouchers/:id/redeem",
			middlewares.LimitPerRoute(RedeemLimit),
			vc.Redeem,
		)

		// 优惠券列表与详情
		v1.GET("/users/:user_id/vouchers",
			middlewares.LimitPerRoute(QueryLimit),
			vc.Index,
		)
		v1.GET("/users/:user_id/vouchers/:id",
			middlewares.LimitPerRoute(QueryLimit),
			vc.Show,
		)
	}

	// 附近商家相关路由
	{
		// 附近商家查询，地图页数据源
		// GET /v1/places/nearby
		v1.GET("/places/nearby",
			middlewares.LimitPerRoute(QueryLimit),
			pc.Nearby,
		)

		// 从外部地点服务导入商家
		// POST /v1/places/sync
		v1.POST("/places/sync", pc.Sync)
	}
}
