package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysqlDuplicateEntry 主键冲突错误码
const mysqlDuplicateEntry = 1062

// Account 账号模型
type Account struct {
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

// AccountRepository 账号仓库接口
type AccountRepository interface {
	Create(ctx context.Context, username, passwordHash string) error
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// accountRepository 账号仓库实现
type accountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository 创建账号仓库实例
func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create 创建账号，用户名已存在时返回ErrConflict
func (r *accountRepository) Create(ctx context.Context, username, passwordHash string) error {
	query := `INSERT INTO accounts (username, password, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.ExecContext(ctx, query, username, passwordHash); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("%w: account %s already exists", ErrConflict, username)
		}
		return upstreamError("create account", err)
	}
	return nil
}

// GetByUsername 根据用户名获取账号
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	account := &Account{}
	query := `SELECT username, password, created_at FROM accounts WHERE username = ?`
	if err := r.db.GetContext(ctx, account, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", ErrNotFound, username)
		}
		return nil, upstreamError("get account", err)
	}
	return account, nil
}

// Exists 账号是否存在
func (r *accountRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE username = ?`
	if err := r.db.GetContext(ctx, &count, query, username); err != nil {
		return false, upstreamError("count account", err)
	}
	return count > 0, nil
}
