// Package database 数据库操作
package database

import (
	"database/sql"

	"mabar/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局 gorm 对象
var DB *gorm.DB

// SQLDB 底层的 sql.DB 对象，用于设置连接池
var SQLDB *sql.DB

// Connect 连接数据库
func Connect(dbConfig gorm.Dialector, _logger gormlogger.Interface) {
	var err error
	DB, err = gorm.Open(dbConfig, &gorm.Config{
		Logger: _logger,
	})
	if err != nil {
		logger.ErrorString("数据库", "连接", err.Error())
		panic(err)
	}

	SQLDB, err = DB.DB()
	if err != nil {
		logger.ErrorString("数据库", "获取底层SQL", err.Error())
		panic(err)
	}
}

// AutoMigrate 自动迁移所有数据表
func AutoMigrate(tables []interface{}) error {
	return DB.AutoMigrate(tables...)
}
