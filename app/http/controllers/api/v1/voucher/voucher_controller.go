package voucher

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	vouchermodel "mabar/app/models/voucher"
	"mabar/app/repositories"
	"mabar/app/requests"
	"mabar/pkg/response"
)

// VoucherController 优惠券接口
type VoucherController struct {
	repo *repositories.VoucherRepository
}

// NewVoucherController 创建控制器实例
func NewVoucherController() *VoucherController {
	return &VoucherController{
		repo: repositories.NewVoucherRepository(),
	}
}

// Index 获取用户的优惠券列表
// GET /v1/users/:user_id/vouchers?status=active
func (vc *VoucherController) Index(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		response.Abort400(c, "User ID is required")
		return
	}

	// 状态过滤，可选
	status := vouchermodel.Status(c.Query("status"))
	switch status {
	case "", vouchermodel.StatusActive, vouchermodel.StatusUsed, vouchermodel.StatusExpired:
	default:
		response.Abort400(c, "Invalid voucher status filter")
		return
	}

	vouchers, err := vc.repo.ListByUser(c.Request.Context(), userID, status, time.Now())
	if err != nil {
		response.Abort500(c, "Failed to load vouchers")
		return
	}

	response.Data(c, vouchers)
}

// Show 获取单张优惠券详情，包含模板和商家信息
// GET /v1/users/:user_id/vouchers/:id
func (vc *VoucherController) Show(c *gin.Context) {
	userID := c.Param("user_id")
	voucherID := c.Param("id")
	if userID == "" || voucherID == "" {
		response.Abort400(c, "User ID and voucher ID are required")
		return
	}

	v, err := vc.repo.GetByID(c.Request.Context(), voucherID, time.Now())
	if err != nil {
		if errors.Is(err, vouchermodel.ErrVoucherNotFound) {
			response.Abort404(c, "Voucher not found")
			return
		}
		response.Abort500(c, "Failed to load voucher")
		return
	}

	// 优惠券只对持有人可见
	if v.UserID != userID {
		response.Abort403(c, "This voucher belongs to another account")
		return
	}

	response.Data(c, v)
}

// Redeem 核销优惠券
// POST /v1/vouchers/:id/redeem
//
// 四种失败各自返回独立的提示文案，客户端不展示笼统的兜底错误
func (vc *VoucherController) Redeem(c *gin.Context) {
	voucherID := c.Param("id")
	if voucherID == "" {
		response.Abort400(c, "Voucher ID is required")
		return
	}

	request, err := requests.ValidateRedeemVoucher(c)
	if err != nil {
		response.BadRequest(c, err, "Invalid redeem request")
		return
	}

	err = vc.repo.Redeem(c.Request.Context(), voucherID, request.UserID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, vouchermodel.ErrVoucherNotFound):
			response.Abort404(c, "Voucher not found")
		case errors.Is(err, vouchermodel.ErrVoucherNotOwned):
			response.Abort403(c, "This voucher belongs to another account")
		case errors.Is(err, vouchermodel.ErrVoucherExpired):
			response.Abort410(c, "This voucher has expired")
		case errors.Is(err, vouchermodel.ErrVoucherNotActive):
			response.Abort409(c, "This voucher has already been used")
		default:
			response.ServerError(c, err, "Redeem failed, please try again")
		}
		return
	}

	response.Data(c, gin.H{"ok": true})
}
