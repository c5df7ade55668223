package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"announcehub/internal/model"
	"announcehub/internal/store"
	"announcehub/pkg/logger"
)

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newAnnouncementRepo(t *testing.T, maxTags int) (*AnnouncementRepository, *store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	client, mr := newRedis(t)
	s := store.NewRedisStore(client, "announcements")
	repo := NewAnnouncementRepository(s, maxTags, logger.NewNop())
	return repo, s, mr
}

// putAnnouncement 直接写入一条公告记录
func putAnnouncement(t *testing.T, s store.Store, id int, tags ...string) {
	t.Helper()
	if tags == nil {
		tags = []string{}
	}
	a := model.Announcement{ID: id, Content: model.Content{Title: "t", Tag: tags}, PublishedAt: "2024-01-01T00:00:00Z"}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), announcementKey(id), data, 0))
}

func ids(list []model.LinkedAnnouncement) []int {
	out := make([]int, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func intPtr(i int) *int { return &i }

// contendedStore SetNX总是失败，模拟id被其他写入方抢占
type contendedStore struct {
	store.Store
	attempts int
}

func (s *contendedStore) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	s.attempts++
	return false, nil
}

// brokenStore 所有枚举操作失败
type brokenStore struct {
	store.Store
}

func (brokenStore) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

// recordingPublisher 记录收到的发布请求
type recordingPublisher struct {
	calls []model.Fields
	id    int
	err   error
}

func (p *recordingPublisher) Create(_ context.Context, input model.Fields) (int, error) {
	p.calls = append(p.calls, input)
	if p.err != nil {
		return 0, p.err
	}
	return p.id, nil
}
