package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Env struct {
	AppAddr      string        `envconfig:"APP_ADDR" default:":5000"`
	GinMode      string        `envconfig:"GIN_MODE"`
	DBDSN        string        `envconfig:"DB_DSN" default:"root:@tcp(127.0.0.1:3306)/nganya?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"`
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"super-secret-key-change-me"`
	JWTTTL       time.Duration `envconfig:"JWT_TTL" default:"24h"`
	CORSOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RedisURL     string        `envconfig:"REDIS_URL"`
	WSSendBuffer int           `envconfig:"WS_SEND_BUFFER" default:"64"`
}

// LoadEnv reads configuration from the process environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func LoadEnv() (Env, error) {
	_ = godotenv.Load(".env")

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}

	env.AppAddr = strings.TrimSpace(env.AppAddr)
	if env.AppAddr == "" {
		env.AppAddr = ":5000"
	}
	env.GinMode = strings.TrimSpace(env.GinMode)
	origins := make([]string, 0, len(env.CORSOrigins))
	for _, o := range env.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	env.CORSOrigins = origins
	if env.WSSendBuffer <= 0 {
		env.WSSendBuffer = 64
	}
	return env, nil
}

// AllowAllOrigins reports whether CORS is configured as a wildcard.
func (e Env) AllowAllOrigins() bool {
	for _, o := range e.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return len(e.CORSOrigins) == 0
}
