package voucher

import (
	"crypto/rand"
	"errors"
	"time"
)

// Status 优惠券状态
type Status string

const (
	StatusActive  Status = "active"  // 可用
	StatusUsed    Status = "used"    // 已核销，终态
	StatusExpired Status = "expired" // 已过期，终态
)

// DiscountType 折扣类型
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // 按比例折扣
	DiscountFixed      DiscountType = "fixed"      // 立减固定金额
	DiscountFreebie    DiscountType = "freebie"    // 赠品
)

// ValidFor 可用场景
type ValidFor string

const (
	ValidForDineIn   ValidFor = "dine_in"
	ValidForTakeaway ValidFor = "takeaway"
	ValidForBoth     ValidFor = "both"
)

// 兑换码参数
const (
	// CodeLength 兑换码固定长度
	CodeLength = 12
	// DefaultValidityHours 模板未指定时的默认有效期
	DefaultValidityHours = 24
)

// codeAlphabet 兑换码字符集，去掉了易混淆的 0/O/1/I/L
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

var (
	// ErrVoucherNotFound 优惠券不存在
	ErrVoucherNotFound = errors.New("voucher not found")
	// ErrVoucherNotActive 非 active 状态不可核销（已核销的券再次核销也走这里）
	ErrVoucherNotActive = errors.New("voucher is not active")
	// ErrVoucherExpired 已过有效期
	ErrVoucherExpired = errors.New("voucher has expired")
	// ErrVoucherNotOwned 非持有人不可核销
	ErrVoucherNotOwned = errors.New("voucher belongs to another user")
	// ErrTemplateUnavailable 商家没有可用的优惠券模板
	ErrTemplateUnavailable = errors.New("no active voucher template for place")
	// ErrCodeCollision 兑换码生成多次碰撞，视为瞬时失败
	ErrCodeCollision = errors.New("voucher code collision")
)

// NewCode 生成一个兑换码
// 唯一性由数据库唯一索引兜底，碰撞时由调用方重新生成
func NewCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// IsExpiredAt 判断在给定时刻是否已过期
// 读路径必须先调用本方法，持久化字段可能还停留在 active（惰性过期）
func (v *Voucher) IsExpiredAt(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// EffectiveStatus 结合当前时刻计算对外可见状态
// 持久化状态为 active 但已过有效期时，对外报告 expired
func (v *Voucher) EffectiveStatus(now time.Time) Status {
	if v.Status == StatusActive && v.IsExpiredAt(now) {
		return StatusExpired
	}
	return v.Status
}
