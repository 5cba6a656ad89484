package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string
		// SecretKey signs session tokens, password reset tokens and the
		// flash cookie. Override it outside DEV.
		SecretKey                 string
		BaseURL                   string
		DefaultFromEmail          mail.Address
		SendgridApiKey            string
		RollbarToken              string
		OmdbApiKey                string
		OmdbBaseURL               string
		SessionExpirationDelta    time.Duration
		PasswordResetTimeoutDelta time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		// Name is the path to the SQLite database file; ":memory:" in TEST mode.
		Name string
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "MovieMatrix")
	conf.SetDefault("secretKey", "q0u(r1@y$vn&fs*4gz+xw)2dz&uoxh2(h!x)#*c2(#yg4h^$c")
	conf.SetDefault("baseUrl", "http://localhost:8080")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("omdbApiKey", "")
	conf.SetDefault("omdbBaseUrl", "https://www.omdbapi.com/")
	conf.SetDefault("sessionExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("serverHost", "0.0.0.0:8080")
	conf.SetDefault("serverDebugHost", "0.0.0.0:8081")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseName", "moviematrix.sqlite")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	testMode := env == "TEST"
	if testMode {
		conf.SetDefault("databaseName", ":memory:")
	}
	conf.SetEnvPrefix(env)

	// load config/.env.<env> if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:                     conf.GetBool("debug"),
		TestMode:                  testMode,
		Env:                       env,
		Build:                     conf.GetString("build"),
		AppName:                   conf.GetString("appName"),
		SecretKey:                 conf.GetString("secretKey"),
		BaseURL:                   conf.GetString("baseUrl"),
		DefaultFromEmail:          mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:            conf.GetString("sendgridApiKey"),
		RollbarToken:              conf.GetString("rollbarToken"),
		OmdbApiKey:                conf.GetString("omdbApiKey"),
		OmdbBaseURL:               conf.GetString("omdbBaseUrl"),
		SessionExpirationDelta:    conf.GetDuration("sessionExpirationDelta"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Name: conf.GetString("databaseName"),
		},
	}
}
