package config

import "mabar/pkg/config"

func init() {
	config.Add("spin", func() map[string]interface{} {
		return map[string]interface{}{
			// 每用户每个 UTC 自然日的抽取额度
			"max_daily_spins": config.Env("SPIN_MAX_DAILY", 3),
		}
	})
}
