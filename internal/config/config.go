// 환경변수 기반 설정 로딩
//
// .env 파일이 있으면 먼저 읽고(godotenv), 이후 viper의 AutomaticEnv로 값을 조회한다.
// 이미 설정된 OS 환경변수가 .env 값보다 우선한다.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultUpstreamURL = "https://api.credibilitycrm.com/api"

type Config struct {
	Server        ServerConfig
	Upstream      UpstreamConfig
	ServiceToken  ServiceTokenConfig
	Notification  NotificationConfig
	Dashboard     DashboardConfig
	Redis         RedisConfig
	Slack         SlackConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	Environment    string
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
	// 서버 측 호출에 사용할 고정 토큰 (브라우저의 localStorage "token" 대체)
	Token string
}

type ServiceTokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type NotificationConfig struct {
	Capacity int
}

type DashboardConfig struct {
	RefreshInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BotToken과 ChannelID가 모두 있어야 문의 티켓 알림을 보낸다
type SlackConfig struct {
	BotToken     string
	ChannelID    string
	APIURL       string
	DashboardURL string
}

type LogConfig struct {
	Level string
}

type ObservabilityConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load - envFile이 비어 있으면 현재 디렉터리의 .env를 시도한다 (없어도 에러 아님)
func Load(envFile string) (Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	timeout, err := parseDuration(v, "UPSTREAM_TIMEOUT")
	if err != nil {
		return Config{}, err
	}
	tokenTTL, err := parseDuration(v, "SERVICE_JWT_TTL")
	if err != nil {
		return Config{}, err
	}
	refresh, err := parseDuration(v, "DASHBOARD_REFRESH_INTERVAL")
	if err != nil {
		return Config{}, err
	}

	capacity := v.GetInt("NOTIFICATION_CAPACITY")
	if capacity <= 0 {
		return Config{}, fmt.Errorf("invalid NOTIFICATION_CAPACITY: %d", capacity)
	}

	return Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			Environment:    v.GetString("ENVIRONMENT"),
		},
		Upstream: UpstreamConfig{
			BaseURL: upstreamURL(v),
			Timeout: timeout,
			Token:   v.GetString("API_TOKEN"),
		},
		ServiceToken: ServiceTokenConfig{
			Secret: v.GetString("SERVICE_JWT_SECRET"),
			TTL:    tokenTTL,
			Issuer: v.GetString("SERVICE_JWT_ISSUER"),
		},
		Notification: NotificationConfig{
			Capacity: capacity,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: refresh,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Slack: SlackConfig{
			BotToken:     v.GetString("SLACK_BOT_TOKEN"),
			ChannelID:    v.GetString("SLACK_CHANNEL_ID"),
			APIURL:       strings.TrimRight(v.GetString("SLACK_API_URL"), "/"),
			DashboardURL: strings.TrimRight(v.GetString("DASHBOARD_URL"), "/"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Observability: ObservabilityConfig{
			ServiceName:  v.GetString("SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}, nil
}

func (c Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("SERVICE_JWT_TTL", "5m")
	v.SetDefault("SERVICE_JWT_ISSUER", "helpdesk-gateway")
	v.SetDefault("NOTIFICATION_CAPACITY", 50)
	v.SetDefault("DASHBOARD_REFRESH_INTERVAL", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "helpdesk-gateway")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SLACK_API_URL", "https://slack.com/api")
}

// UPSTREAM_API_URL 우선, 기존 프론트엔드 변수명(NEXT_PUBLIC_API_URL)도 허용
func upstreamURL(v *viper.Viper) string {
	for _, key := range []string{"UPSTREAM_API_URL", "NEXT_PUBLIC_API_URL"} {
		if val := strings.TrimSpace(v.GetString(key)); val != "" {
			return strings.TrimRight(val, "/")
		}
	}
	return DefaultUpstreamURL
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return nil
}
