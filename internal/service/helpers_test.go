package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"announcehub/internal/auth"
	"announcehub/internal/cache"
	"announcehub/internal/model"
	"announcehub/internal/repository"
	"announcehub/internal/store"
	"announcehub/pkg/logger"
)

var testLanguageTags = map[string][]string{
	"zh": {"zh", "zh-tw", "zh-hant"},
	"en": {"en"},
}

type fixture struct {
	mr            *miniredis.Miniredis
	announcements *AnnouncementService
	reviews       *ReviewService
	notifier      *fakeNotifier
	applications  *repository.ApplicationRepository
}

func newFixture(t *testing.T, allowOwnerModify bool) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	log := logger.NewNop()

	announcementRepo := repository.NewAnnouncementRepository(store.NewRedisStore(client, "announcement"), 20, log)
	announcementCache := cache.NewAnnouncementCache(store.NewRedisStore(client, "cache"), announcementRepo, 2*time.Minute, log)
	announcements := NewAnnouncementService(announcementRepo, announcementCache, testLanguageTags, log)

	applications := repository.NewApplicationRepository(store.NewRedisStore(client, "application"), announcements, 20, 30*24*time.Hour, log)
	notifier := &fakeNotifier{}
	return &fixture{
		mr:            mr,
		announcements: announcements,
		reviews:       NewReviewService(applications, notifier, allowOwnerModify, log),
		notifier:      notifier,
		applications:  applications,
	}
}

type reviewed struct {
	app            model.Application
	announcementID int
}

type fakeNotifier struct {
	mu        sync.Mutex
	submitted []model.Application
	reviewed  []reviewed
}

func (n *fakeNotifier) ApplicationSubmitted(app model.Application) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, app)
}

func (n *fakeNotifier) ApplicationReviewed(app model.Application, announcementID int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, reviewed{app: app, announcementID: announcementID})
}

// memoryAccounts 内存账号仓库
type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*repository.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{accounts: make(map[string]*repository.Account)}
}

func (m *memoryAccounts) Create(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[username]; ok {
		return fmt.Errorf("%w: account %s already exists", repository.ErrConflict, username)
	}
	m.accounts[username] = &repository.Account{Username: username, Password: passwordHash, CreatedAt: time.Now()}
	return nil
}

func (m *memoryAccounts) GetByUsername(_ context.Context, username string) (*repository.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, username)
	}
	return a, nil
}

func (m *memoryAccounts) Exists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[username]
	return ok, nil
}

// stubVerifier 返回固定结果的身份校验器
type stubVerifier struct {
	email string
	err   error
}

func (v stubVerifier) Verify(context.Context, string) (string, error) {
	return v.email, v.err
}

type authFixture struct {
	svc      *AuthService
	roles    *repository.RoleRepository
	accounts *memoryAccounts
	jwt      *auth.JWTManager
}

func newAuthFixture(t *testing.T, verifiers map[string]auth.IdentityVerifier, allowedDomains ...string) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwtManager, err := auth.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)
	roles := repository.NewRoleRepository(client)
	accounts := newMemoryAccounts()
	svc := NewAuthService(accounts, roles, jwtManager, verifiers, []string{"rootadmin"}, allowedDomains, logger.NewNop())
	return &authFixture{svc: svc, roles: roles, accounts: accounts, jwt: jwtManager}
}
