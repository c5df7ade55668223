package database

import (
	"fmt"
	"time"

	"announcehub/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// NewMySQLConnection 创建一个新的MySQL连接
func NewMySQLConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池，账号表访问量很小
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// accountsSchema 账号表结构
const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	username   VARCHAR(128) NOT NULL PRIMARY KEY,
	password   VARCHAR(255) NOT NULL,
	created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
) DEFAULT CHARSET = utf8mb4`

// Migrate 创建服务所需的表
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(accountsSchema); err != nil {
		return fmt.Errorf("创建accounts表失败: %w", err)
	}
	return nil
}
