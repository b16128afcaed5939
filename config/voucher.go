package config

import "mabar/pkg/config"

func init() {
	config.Add("voucher", func() map[string]interface{} {
		return map[string]interface{}{
			// 发放后有效时长，单位小时
			"validity_hours": config.Env("VOUCHER_VALIDITY_HOURS", 24),
		}
	})
}
