package migrations

import (
	"mabar/app/models/place"
	"mabar/app/models/spin"
	"mabar/app/models/voucher"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&place.Place{},
		&voucher.Template{},
		&voucher.Voucher{},
		&spin.DailySpin{},
		&spin.History{},
	}
}
