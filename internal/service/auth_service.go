package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"k8s.io/apimachinery/pkg/util/sets"

	"announcehub/internal/auth"
	"announcehub/internal/repository"
	"announcehub/pkg/logger"
)

// 第三方登录提供方
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

const (
	minUsernameLength = 8
	maxUsernameLength = 64
	minPasswordLength = 8
	// bcrypt只使用前72字节
	maxPasswordLength = 72
)

// AuthService 账号与权限服务
type AuthService struct {
	accounts       repository.AccountRepository
	roles          *repository.RoleRepository
	jwt            *auth.JWTManager
	verifiers      map[string]auth.IdentityVerifier
	admins         sets.Set[string]
	allowedDomains []string
	logger         *logger.Logger
}

// NewAuthService 创建认证服务实例，verifiers按提供方名称注册
func NewAuthService(
	accounts repository.AccountRepository,
	roles *repository.RoleRepository,
	jwt *auth.JWTManager,
	verifiers map[string]auth.IdentityVerifier,
	admins []string,
	allowedDomains []string,
	logger *logger.Logger,
) *AuthService {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}
	return &AuthService{
		accounts:       accounts,
		roles:          roles,
		jwt:            jwt,
		verifiers:      verifiers,
		admins:         sets.New[string](admins...),
		allowedDomains: domains,
		logger:         logger,
	}
}

// Register 注册账号
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return fmt.Errorf("%w: username length must be between %d and %d", repository.ErrValidation, minUsernameLength, maxUsernameLength)
	}
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("%w: password length must be between %d and %d", repository.ErrValidation, minPasswordLength, maxPasswordLength)
	}

	if err := s.checkBanned(ctx, username); err != nil {
		return err
	}

	exists, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: username already registered", repository.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.Create(ctx, username, string(hash)); err != nil {
		return err
	}
	s.logger.Info("用户注册成功", "username", username)
	return nil
}

// Login 用户名密码登录，返回token
func (s *AuthService) Login(ctx context.Context, username, password, fcm string) (string, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", ErrUnauthorized
	}
	if err := s.checkBanned(ctx, username); err != nil {
		return "", err
	}
	return s.issue(ctx, username, auth.LoginGeneral, fcm)
}

// IdentityLogin 第三方身份登录，用户名为验证过的邮箱
func (s *AuthService) IdentityLogin(ctx context.Context, provider, idToken, fcm string) (string, error) {
	verifier, ok := s.verifiers[provider]
	if !ok || verifier == nil {
		return "", fmt.Errorf("%w: identity provider %q is not enabled", repository.ErrNotFound, provider)
	}

	email, err := verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrProviderUnavailable) {
			return "", fmt.Errorf("%w: %w", repository.ErrUpstream, err)
		}
		s.logger.Warn("第三方身份验证失败", "provider", provider, err)
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	email = strings.ToLower(email)
	if !s.domainAllowed(email) {
		return "", fmt.Errorf("%w: email domain is not allowed", ErrForbidden)
	}
	if err := s.checkBanned(ctx, email); err != nil {
		return "", err
	}

	loginType := auth.LoginOAuth2
	if provider == ProviderApple {
		loginType = auth.LoginApple
	}
	return s.issue(ctx, email, loginType, fcm)
}

func (s *AuthService) domainAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, d := range s.allowedDomains {
		if domain == d {
			return true
		}
	}
	return false
}

func (s *AuthService) issue(ctx context.Context, username string, loginType auth.LoginType, fcm string) (string, error) {
	level, err := s.PermissionLevel(ctx, username)
	if err != nil {
		return "", err
	}
	token, err := s.jwt.GenerateToken(username, loginType, level, fcm)
	if err != nil {
		return "", err
	}
	s.logger.Info("用户登录", "username", username, "login_type", string(loginType), "level", level)
	return token, nil
}

// PermissionLevel 管理员为2，审核员为1，其余为0
func (s *AuthService) PermissionLevel(ctx context.Context, username string) (int, error) {
	if s.admins.Has(username) {
		return auth.LevelAdmin, nil
	}
	editor, err := s.roles.Contains(ctx, repository.EditorSet, username)
	if err != nil {
		return 0, err
	}
	if editor {
		return auth.LevelEditor, nil
	}
	return auth.LevelUser, nil
}

// Authenticate 校验token并拒绝已封禁的用户
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if err := s.checkBanned(ctx, claims.Username); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenTTL token有效期，用于设置cookie
func (s *AuthService) TokenTTL() int {
	return int(s.jwt.TTL().Seconds())
}

func (s *AuthService) checkBanned(ctx context.Context, username string) error {
	banned, err := s.roles.Contains(ctx, repository.BannedSet, username)
	if err != nil {
		return err
	}
	if banned {
		return ErrBanned
	}
	return nil
}

// Editors 审核员列表
func (s *AuthService) Editors(ctx context.Context) ([]string, error) {
	return s.roles.Members(ctx, repository.EditorSet)
}

// AddEditor 添加审核员，账号必须已注册或是第三方登录的邮箱用户
func (s *AuthService) AddEditor(ctx context.Context, username string) error {
	if err := s.checkKnownUser(ctx, username); err != nil {
		return err
	}
	added, err := s.roles.Add(ctx, repository.EditorSet, username)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("%w: %s is already an editor", repository.ErrConflict, username)
	}
	s.logger.Info("添加审核员", "username", username)
	return nil
}

// RemoveEditor 移除审核员
func (s *AuthService) RemoveEditor(ctx context.Context, username string) error {
	removed, err := s.roles.Remove(ctx, repository.EditorSet, username)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s is not an editor", repository.ErrNotFound, username)
	}
	s.logger.Info("移除审核员", "username", username)
	return nil
}

func (s *AuthService) checkKnownUser(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", repository.ErrValidation)
	}
	if addr, err := mail.ParseAddress(username); err == nil && addr.Address == username {
		return nil
	}
	exists, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: user %s is not registered", repository.ErrNotFound, username)
	}
	return nil
}

// BannedUsers 封禁列表
func (s *AuthService) BannedUsers(ctx context.Context) ([]string, error) {
	return s.roles.Members(ctx, repository.BannedSet)
}

// Ban 封禁用户，重复封禁不报错
func (s *AuthService) Ban(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", repository.ErrValidation)
	}
	if _, err := s.roles.Add(ctx, repository.BannedSet, username); err != nil {
		return err
	}
	s.logger.Info("封禁用户", "username", username)
	return nil
}

// Unban 解除封禁
func (s *AuthService) Unban(ctx context.Context, username string) error {
	removed, err := s.roles.Remove(ctx, repository.BannedSet, username)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s is not banned", repository.ErrNotFound, username)
	}
	s.logger.Info("解除封禁", "username", username)
	return nil
}
