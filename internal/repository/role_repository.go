package repository

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// 角色集合的key
const (
	EditorSet = "editor"
	BannedSet = "banned"
)

// RoleRepository 编辑和封禁名单，存储为redis集合
type RoleRepository struct {
	client *redis.Client
}

// NewRoleRepository 创建角色仓库实例
func NewRoleRepository(client *redis.Client) *RoleRepository {
	return &RoleRepository{client: client}
}

// Add 加入集合，返回是否为新成员
func (r *RoleRepository) Add(ctx context.Context, set, username string) (bool, error) {
	n, err := r.client.SAdd(ctx, set, username).Result()
	if err != nil {
		return false, upstreamError("add "+set, err)
	}
	return n > 0, nil
}

// Remove 移出集合，返回成员是否存在
func (r *RoleRepository) Remove(ctx context.Context, set, username string) (bool, error) {
	n, err := r.client.SRem(ctx, set, username).Result()
	if err != nil {
		return false, upstreamError("remove "+set, err)
	}
	return n > 0, nil
}

// Contains 是否为集合成员
func (r *RoleRepository) Contains(ctx context.Context, set, username string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, set, username).Result()
	if err != nil {
		return false, upstreamError("check "+set, err)
	}
	return ok, nil
}

// Members 集合成员，按字母排序
func (r *RoleRepository) Members(ctx context.Context, set string) ([]string, error) {
	members, err := r.client.SMembers(ctx, set).Result()
	if err != nil {
		return nil, upstreamError("list "+set, err)
	}
	sort.Strings(members)
	return members, nil
}
