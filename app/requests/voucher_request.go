package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// RedeemVoucherRequest 核销请求
type RedeemVoucherRequest struct {
	UserID string `json:"user_id" valid:"required"`
}

// ValidateRedeemVoucher 校验核销请求
func ValidateRedeemVoucher(c *gin.Context) (*RedeemVoucherRequest, error) {
	rules := govalidator.MapData{
		"user_id": []string{"required"},
	}

	messages := govalidator.MapData{
		"user_id": []string{
			"required:User ID is required",
		},
	}

	req, err := ValidateRequest[RedeemVoucherRequest](c, rules, messages)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
