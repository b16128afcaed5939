package spin

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	spinmodel "mabar/app/models/spin"
	"mabar/app/repositories"
	"mabar/app/requests"
	"mabar/app/services"
	"mabar/pkg/config"
	"mabar/pkg/draw"
	"mabar/pkg/queue"
	"mabar/pkg/response"
)

// 拒绝原因，对应客户端的两种提示文案
const (
	DeniedQuotaExhausted = "quota_exhausted"
	DeniedNoCandidates   = "no_candidates"
)

// SpinController 转盘接口
type SpinController struct {
	service      *services.SpinService
	queueService *queue.QueueService
}

// NewSpinController 创建控制器实例
func NewSpinController() *SpinController {
	queueService := queue.NewQueueService()

	service := services.NewSpinService(
		repositories.NewSpinRepository(),
		repositories.NewVoucherRepository(),
		repositories.NewPlaceRepository(),
		queueService,
		services.SpinServiceConfig{
			MaxSpins: config.GetInt("spin.max_daily_spins", spinmodel.DefaultMaxSpins),
		},
	)

	return &SpinController{
		service:      service,
		queueService: queueService,
	}
}

// GetStatus 查询当天额度状态
// GET /v1/users/:user_id/spin-status
func (sc *SpinController) GetStatus(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.Abort400(c, "User ID is required")
		return
	}

	// 存储不可用时内部降级为零用量视图，页面保持可用
	status := sc.service.GetStatus(c.Request.Context(), userID)
	response.Data(c, status)
}

// Store 执行一次抽取
// POST /v1/spins
func (sc *SpinController) Store(c *gin.Context) {
	request, err := requests.ValidatePerformSpin(c)
	if err != nil {
		response.BadRequest(c, err, "Invalid spin request")
		return
	}

	result, err := sc.service.PerformSpin(
		c.Request.Context(),
		request.UserID,
		services.SearchArea{
			Latitude:  request.Latitude,
			Longitude: request.Longitude,
			RadiusKm:  request.RadiusKm,
		},
		request.Category,
	)

	if err != nil {
		switch {
		case errors.Is(err, spinmodel.ErrQuotaExhausted):
			// 拒绝是正常业务结果，返回具体原因
			response.JSON(c, gin.H{
				"status":  "denied",
				"reason":  DeniedQuotaExhausted,
				"message": "You have used all your spins for today",
			})
		case errors.Is(err, draw.ErrEmptyCandidates):
			response.JSON(c, gin.H{
				"status":  "denied",
				"reason":  DeniedNoCandidates,
				"message": "No places found nearby, try a wider radius or another category",
			})
		default:
			response.ServerError(c, err, "Spin failed, please try again")
		}
		return
	}

	response.Data(c, result)
}

// GetHistory 获取用户的抽取流水
// GET /v1/users/:user_id/spin-history
func (sc *SpinController) GetHistory(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.Abort400(c, "User ID is required")
		return
	}

	// 分页参数
	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if pageNum < 1 {
		pageNum = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	repo := repositories.NewSpinRepository()
	entries, total, err := repo.ListHistory(c.Request.Context(), userID, pageNum, size)
	if err != nil {
		response.Abort500(c, "Failed to load spin history")
		return
	}

	response.Data(c, gin.H{
		"data": entries,
		"meta": gin.H{
			"total":     total,
			"page":      pageNum,
			"page_size": size,
		},
	})
}

// HealthCheck 健康检查端点
// GET /v1/health
func (sc *SpinController) HealthCheck(c *gin.Context) {
	if err := sc.queueService.Ping(c.Request.Context()); err != nil {
		response.Abort500(c, "History queue unavailable")
		return
	}

	response.Data(c, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}
