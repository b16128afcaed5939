package config

import "mabar/pkg/config"

func init() {
	config.Add("places", func() map[string]interface{} {
		return map[string]interface{}{
			// 外部地点服务实例，多个用英文逗号分隔，按序号一一对应
			"urls":     config.Env("PLACES_URLS", ""),
			"api_keys": config.Env("PLACES_API_KEYS", ""),

			"timeout":     config.Env("PLACES_TIMEOUT", 10),
			"max_retries": config.Env("PLACES_MAX_RETRIES", 2),
		}
	})
}
