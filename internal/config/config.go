package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	// service-role のDSN。空ならDBを使う操作は503
	DatabaseURL string

	PaymentKeyID      string // 決済ゲートウェイのキー
	PaymentKeySecret  string // 決済ゲートウェイのシークレット（署名検証にも使う）
	PaymentAPIBaseURL string

	JWTSecret string // JWT署名シークレット

	RedisAddr    string        // 空ならプロセス内キャッシュ
	RoleCacheTTL time.Duration // 管理者ロールのキャッシュ時間

	RequestTimeout time.Duration

	StrictTransitions bool // ステータス遷移を前進のみに制限する

	ShippingFlatCents          int64
	FreeShippingThresholdCents int64

	LogLevel slog.Level
}

// Loadは.env（あれば）と環境変数から読む
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DatabaseURL:       databaseURL(),
		PaymentKeyID:      os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret:  os.Getenv("PAYMENT_KEY_SECRET"),
		PaymentAPIBaseURL: getenv("PAYMENT_API_BASE_URL", "https://api.razorpay.com/v1"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.RoleCacheTTL, err = durationEnv("ROLE_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.StrictTransitions, err = boolEnv("ORDER_STRICT_TRANSITIONS", false); err != nil {
		return Config{}, err
	}
	if cfg.ShippingFlatCents, err = int64Env("SHIPPING_FLAT_CENTS", 0); err != nil {
		return Config{}, err
	}
	if cfg.FreeShippingThresholdCents, err = int64Env("FREE_SHIPPING_THRESHOLD_CENTS", 0); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "INFO"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ShippingFlatCents < 0 || cfg.FreeShippingThresholdCents < 0 {
		return Config{}, fmt.Errorf("shipping amounts must not be negative")
	}

	return cfg, nil
}

// HasServiceCredential はDBの資格情報があるか
func (c Config) HasServiceCredential() bool {
	return c.DatabaseURL != ""
}

// Addr は ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// DATABASE_URL があれば最優先。無ければ POSTGRES_* から組み立てる（パスワード必須）。
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	if pass == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getenv("POSTGRES_USER", "postgres"), pass),
		Host:   getenv("POSTGRES_HOST", "localhost") + ":" + getenv("POSTGRES_PORT", "5432"),
		Path:   "/" + getenv("POSTGRES_DB", "app"),
	}
	q := u.Query()
	q.Set("sslmode", getenv("POSTGRES_SSLMODE", "disable"))
	u.RawQuery = q.Encode()
	return u.String()
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
