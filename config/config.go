package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort      int
	LogLevel     string
	LogFile      LogFileConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Email        EmailConfig
	Announcement AnnouncementConfig
	Auth         AuthConfig
	Notify       NotifyConfig
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool
	Path       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置，不同数据使用不同的库
type RedisConfig struct {
	Host           string
	Port           int
	Password       string
	AnnouncementDB int
	ApplicationDB  int
	CacheDB        int
	AuthDB         int
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// AnnouncementConfig 公告与审核配置
type AnnouncementConfig struct {
	MaxTags                int
	CacheTTL               time.Duration
	ApprovedApplicationTTL time.Duration
	AllowOwnerModify       bool
	LanguageTags           map[string][]string
}

// AuthConfig 认证配置
type AuthConfig struct {
	Admins              []string
	SecretKey           string
	TokenTTL            time.Duration
	AllowedEmailDomains []string
	GoogleClientID      string
	GoogleTokenInfoURL  string
	AppleAudience       string
	AppleKeysURL        string
}

// NotifyConfig 通知配置
type NotifyConfig struct {
	DiscordWebhookURL string
	FCMServerToken    string
	FCMEndpoint       string
	QueueSize         int
	Workers           int
}

// Load 从环境变量加载配置，.env文件可选
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		APIPort:  envInt("API_PORT", 8080),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile: LogFileConfig{
			Enabled:    envBool("LOG_FILE_ENABLED", false),
			Path:       envString("LOG_FILE_PATH", "logs/announcehub.log"),
			MaxSize:    envInt("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: envInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     envInt("LOG_FILE_MAX_AGE", 30),
			Compress:   envBool("LOG_FILE_COMPRESS", true),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     envInt("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:           envString("REDIS_HOST", "127.0.0.1"),
			Port:           envInt("REDIS_PORT", 6379),
			Password:       os.Getenv("REDIS_PASSWORD"),
			AnnouncementDB: envInt("REDIS_ANNOUNCEMENT_DB", 8),
			ApplicationDB:  envInt("REDIS_APPLICATION_DB", 3),
			CacheDB:        envInt("REDIS_CACHE_DB", 9),
			AuthDB:         envInt("REDIS_AUTH_DB", 6),
		},
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Port:     envInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
			FromName: os.Getenv("EMAIL_FROM_NAME"),
		},
		Announcement: AnnouncementConfig{
			MaxTags:                envInt("MAX_TAGS_LIMIT", 20),
			CacheTTL:               time.Duration(envInt("CACHE_EXPIRE_SEC", 120)) * time.Second,
			ApprovedApplicationTTL: time.Duration(envInt("APPLICATION_EXPIRE_TIME_AFTER_APPROVE", 60*60*24*30)) * time.Second,
			AllowOwnerModify:       envBool("ALLOW_APPLICATION_OWNER_MODIFY", true),
			LanguageTags: map[string][]string{
				"zh": {"zh", "zh-tw", "zh-hant"},
				"en": {"en"},
			},
		},
		Auth: AuthConfig{
			Admins:              envList("ADMIN"),
			SecretKey:           os.Getenv("ANNOUNCEMENTS_SECRET_KEY"),
			TokenTTL:            time.Duration(envInt("JWT_EXPIRE_TIME", 3600)) * time.Second,
			AllowedEmailDomains: envList("APPLICANT_HOSTNAME_LIMIT"),
			GoogleClientID:      os.Getenv("GOOGLE_OAUTH2_CLIENT_ID"),
			GoogleTokenInfoURL:  envString("GOOGLE_OAUTH2_TOKEN_INFO", "https://oauth2.googleapis.com/tokeninfo"),
			AppleAudience:       os.Getenv("APPLE_SIGN_IN_AUD"),
			AppleKeysURL:        envString("APPLE_AUTH_KEYS_URL", "https://appleid.apple.com/auth/keys"),
		},
		Notify: NotifyConfig{
			DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
			FCMServerToken:    os.Getenv("FCM_SERVER_TOKEN"),
			FCMEndpoint:       envString("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			QueueSize:         envInt("NOTIFY_QUEUE_SIZE", 100),
			Workers:           envInt("NOTIFY_WORKERS", 4),
		},
	}, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// envList 解析以分号分隔的列表，忽略空项
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
