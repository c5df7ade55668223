package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcehub/internal/model"
	"announcehub/pkg/logger"
)

func TestAnnouncementRepository_CreateWithOnlyTitle(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 20)
	repo.builder.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Fields{"title": "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, 0, got.Weight)
	assert.Nil(t, got.URL)
	assert.Nil(t, got.ExpireTime)
	assert.Equal(t, []string{}, got.Tag)
	assert.Equal(t, "2024-05-01T08:00:00Z", got.PublishedAt)
}

func TestAnnouncementRepository_CreateMissingTitle(t *testing.T) {
	repo, _, mr := newAnnouncementRepo(t, 20)

	_, err := repo.Create(context.Background(), model.Fields{"weight": 1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = repo.Create(context.Background(), model.Fields{"title": ""})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, mr.Keys())
}

func TestAnnouncementRepository_CreateFillsGaps(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	putAnnouncement(t, s, 0)
	putAnnouncement(t, s, 2)

	id, err := repo.Create(ctx, model.Fields{"title": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	id, err = repo.Create(ctx, model.Fields{"title": "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestAnnouncementRepository_CreateSkipsForeignKeyIDs(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "announcement:0:legacy", []byte("{}"), 0))

	id, err := repo.Create(ctx, model.Fields{"title": "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestAnnouncementRepository_TagsDedupAndCap(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 3)
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Fields{
		"title": "t",
		"tag":   []any{"news", "zh", "news", "event", "zh", "extra"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"news", "zh", "event"}, got.Tag)
}

func TestAnnouncementRepository_PastExpiryRejected(t *testing.T) {
	repo, _, mr := newAnnouncementRepo(t, 20)

	_, err := repo.Create(context.Background(), model.Fields{"title": "t", "expireTime": "2000-01-01T00:00:00Z"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, mr.Keys())
}

func TestAnnouncementRepository_InvalidExpiry(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 20)

	for _, in := range []string{"tomorrow", "2030-01-01T00:00:00J", "2030-01-01T00:00:00"} {
		_, err := repo.Create(context.Background(), model.Fields{"title": "t", "expireTime": in})
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestAnnouncementRepository_FutureExpirySetsTTL(t *testing.T) {
	repo, _, mr := newAnnouncementRepo(t, 20)
	repo.builder.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	// B时区为UTC+2，12:00B即10:00Z，距离现在两小时
	id, err := repo.Create(ctx, model.Fields{"title": "t", "expireTime": "2024-5-1T12:00:00B"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.ExpireTime)
	assert.Equal(t, "2024-05-01T10:00:00Z", *got.ExpireTime)
	assert.Equal(t, 2*time.Hour, mr.TTL("announcements:announcement:0"))

	mr.FastForward(3 * time.Hour)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnnouncementRepository_EmptyExpiryMeansNone(t *testing.T) {
	repo, _, mr := newAnnouncementRepo(t, 20)

	id, err := repo.Create(context.Background(), model.Fields{"title": "t", "expireTime": ""})
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got.ExpireTime)
	assert.Equal(t, time.Duration(0), mr.TTL("announcements:announcement:0"))
}

func TestAnnouncementRepository_ClaimContention(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	contended := &contendedStore{Store: s}
	repo.store = contended

	_, err := repo.Create(context.Background(), model.Fields{"title": "t"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, maxClaimAttempts, contended.attempts)
}

func TestAnnouncementRepository_UpstreamFailure(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	repo.store = brokenStore{Store: s}

	_, err := repo.ListAll(context.Background())
	require.ErrorIs(t, err, ErrUpstream)

	_, err = repo.Create(context.Background(), model.Fields{"title": "t"})
	require.ErrorIs(t, err, ErrUpstream)
}

func TestAnnouncementRepository_Update(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	repo.builder.now = func() time.Time { return fixedNow }

	id, err := repo.Create(ctx, model.Fields{"title": "old", "weight": 3, "tag": []string{"a"}, "url": "https://a"})
	require.NoError(t, err)

	repo.builder.now = func() time.Time { return fixedNow.Add(time.Hour) }
	require.NoError(t, repo.Update(ctx, id, model.Fields{"title": "new", "weight": "bad", "id": 99}))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, 3, got.Weight)
	assert.Equal(t, []string{"a"}, got.Tag)
	require.NotNil(t, got.URL)
	assert.Equal(t, "https://a", *got.URL)
	assert.Equal(t, "2024-05-01T09:00:00Z", got.PublishedAt)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnnouncementRepository_UpdateNotFound(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 20)

	err := repo.Update(context.Background(), 7, model.Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnnouncementRepository_UpdateEmptyTitle(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	putAnnouncement(t, s, 4)

	err := repo.Update(context.Background(), 4, model.Fields{"title": ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAnnouncementRepository_ListAllLinkage(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	putAnnouncement(t, s, 5)
	list, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].LastID)
	assert.Nil(t, list[0].NextID)

	putAnnouncement(t, s, 9)
	putAnnouncement(t, s, 1)
	list, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 9}, ids(list))

	assert.Nil(t, list[0].LastID)
	assert.Equal(t, intPtr(5), list[0].NextID)
	assert.Equal(t, intPtr(1), list[1].LastID)
	assert.Equal(t, intPtr(9), list[1].NextID)
	assert.Equal(t, intPtr(5), list[2].LastID)
	assert.Nil(t, list[2].NextID)
}

func TestAnnouncementRepository_ListIgnoresForeignKeys(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	putAnnouncement(t, s, 1)
	require.NoError(t, s.Set(ctx, "announcement:1:old", []byte("not json"), 0))
	require.NoError(t, s.Set(ctx, "announcement:2", []byte("not json"), 0))

	list, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(list))
}

func TestAnnouncementRepository_SearchByTags(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	putAnnouncement(t, s, 1, "a")
	putAnnouncement(t, s, 2, "a", "b")
	putAnnouncement(t, s, 3, "c")
	putAnnouncement(t, s, 4)

	all, err := repo.SearchByTags(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(all))

	// 单个标签：包含该标签
	one, err := repo.SearchByTags(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(one))
	assert.Nil(t, one[0].LastID)
	assert.Equal(t, intPtr(2), one[0].NextID)
	assert.Equal(t, intPtr(1), one[1].LastID)
	assert.Nil(t, one[1].NextID)

	// 重复的标签视为一个
	dup, err := repo.SearchByTags(ctx, []string{"a", "a", ""})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(dup))

	// 多个标签：不包含其中任何一个
	none, err := repo.SearchByTags(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ids(none))
	assert.Nil(t, none[0].LastID)
	assert.Nil(t, none[0].NextID)
}

func TestAnnouncementRepository_CountedTagsAreSearchable(t *testing.T) {
	repo, _, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()

	a, err := repo.Create(ctx, model.Fields{"title": "a", "tag": []any{" x", ""}})
	require.NoError(t, err)
	b, err := repo.Create(ctx, model.Fields{"title": "b", "tag": []any{"x", "  ", "y "}})
	require.NoError(t, err)

	counts, err := repo.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, counts)

	for tag, n := range counts {
		found, err := repo.SearchByTags(ctx, []string{tag})
		require.NoError(t, err)
		assert.Len(t, found, n, tag)
	}

	padded, err := repo.SearchByTags(ctx, []string{" x"})
	require.NoError(t, err)
	assert.Equal(t, []int{a, b}, ids(padded))
}

func TestAnnouncementRepository_TagCounts(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	putAnnouncement(t, s, 1, "a")
	putAnnouncement(t, s, 2, "a", "b")

	counts, err := repo.TagCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestAnnouncementRepository_Delete(t *testing.T) {
	repo, s, _ := newAnnouncementRepo(t, 20)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, 3, false), ErrNotFound)

	putAnnouncement(t, s, 3)
	require.NoError(t, repo.Delete(ctx, 3, false))
	_, err := repo.GetByID(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnnouncementRepository_DeleteConflict(t *testing.T) {
	repo, s, mr := newAnnouncementRepo(t, 20)
	ctx := context.Background()
	putAnnouncement(t, s, 3)
	require.NoError(t, s.Set(ctx, "announcement:3:legacy", []byte("{}"), 0))

	err := repo.Delete(ctx, 3, false)
	require.ErrorIs(t, err, ErrConflict)
	assert.Len(t, mr.Keys(), 2)

	require.NoError(t, repo.Delete(ctx, 3, true))
	assert.Empty(t, mr.Keys())
}

func TestFilterByTags_DoesNotModifyInput(t *testing.T) {
	list := []model.Announcement{
		{ID: 1, Content: model.Content{Tag: []string{"a"}}},
		{ID: 2, Content: model.Content{Tag: []string{"b"}}},
	}
	out := FilterByTags(list, []string{"b"})
	require.Len(t, out, 1)
	out[0].ID = 100
	assert.Equal(t, 2, list[1].ID)
}

func TestParseAnnouncementKey(t *testing.T) {
	cases := []struct {
		key       string
		id        int
		canonical bool
		ok        bool
	}{
		{"announcement:12", 12, true, true},
		{"announcement:12:zh", 12, false, true},
		{"announcement:x", 0, false, false},
		{"announcement:-1", 0, false, false},
		{"other:1", 0, false, false},
	}
	for _, c := range cases {
		id, canonical, ok := parseAnnouncementKey(c.key)
		assert.Equal(t, c.ok, ok, c.key)
		assert.Equal(t, c.id, id, c.key)
		assert.Equal(t, c.canonical, canonical, c.key)
	}
}

func TestNewAnnouncementRepository_Defaults(t *testing.T) {
	repo := NewAnnouncementRepository(nil, 5, logger.NewNop())
	assert.Equal(t, 5, repo.builder.maxTags)
	assert.NotNil(t, repo.builder.now)
}
