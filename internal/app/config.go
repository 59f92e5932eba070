package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/stylevision/internal/handoff"
)

type Config struct {
	Env            string
	Port           string
	KVDriver       string
	SessionKey     string
	AdminAPIKey    string
	WhatsAppNumber string
	SessionTTL     time.Duration
	MaxUploadMB    int64

	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// LoadConfig lee el entorno una sola vez; los valores inválidos caen al default.
func LoadConfig() Config {
	c := Config{
		Env:                strings.ToLower(env("APP_ENV", "development")),
		Port:               env("PORT", "8080"),
		KVDriver:           strings.ToLower(env("KV_DRIVER", "postgres")),
		SessionKey:         os.Getenv("SESSION_KEY"),
		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),
		WhatsAppNumber:     env("WHATSAPP_NUMBER", handoff.DefaultNumber),
		SessionTTL:         24 * time.Hour,
		MaxUploadMB:        10,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		BaseURL:            env("BASE_URL", "http://localhost:8080"),
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.SessionTTL = d
		} else {
			log.Warn().Str("SESSION_TTL", v).Msg("duración inválida, uso 24h")
		}
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxUploadMB = n
		} else {
			log.Warn().Str("MAX_UPLOAD_MB", v).Msg("valor inválido, uso 10")
		}
	}
	return c
}

func (c Config) IsProduction() bool { return c.Env == "production" || c.Env == "prod" }

// DSN arma la cadena de conexión como lo hace el resto del stack.
func DSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	user := env("DB_USER", env("POSTGRES_USER", "postgres"))
	pass := env("DB_PASSWORD", env("POSTGRES_PASSWORD", "postgres"))
	name := env("DB_NAME", env("POSTGRES_DB", "stylevision"))
	return "host=" + env("DB_HOST", "localhost") +
		" user=" + user +
		" password=" + pass +
		" dbname=" + name +
		" port=" + env("DB_PORT", "5432") +
		" sslmode=" + env("DB_SSLMODE", "disable")
}
