package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// User deletion policies
const (
	DeletionSoft = "soft"
	DeletionHard = "hard"
)

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Users    UsersConfig
		Stats    StatsConfig
		Media    MediaConfig
		Avatars  AvatarsConfig
		Email    EmailConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		SecretKey                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		AuthRateLimit             float64 // requests per second, per IP
		AuthRateBurst             int
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		DisableTLS    bool
		SQLitePath    string
		LogQueries    bool
		MaxOpenConns  int
		MaxIdleConns  int
		AdminUser     string
		AdminPassword string
	}

	UsersConfig struct {
		InviteCodes         map[string]string // code -> role
		DeletionPolicy      string
		CommonPasswordsPath string
	}

	StatsConfig struct {
		Interval time.Duration
	}

	MediaConfig struct {
		Backend       string // local | s3
		Dir           string
		BaseURL       string
		MaxUploadSize int64
		S3Bucket      string
		S3Endpoint    string
		S3Region      string
		S3AccessKey   string
		S3SecretKey   string
		S3PublicURL   string
	}

	AvatarsConfig struct {
		Enabled bool
		BaseURL string
		Timeout time.Duration
	}

	EmailConfig struct {
		SendgridAPIKey   string
		DefaultFromEmail mail.Address
		FrontendBaseURL  string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// InviteRole returns the role granted by an invite code. Codes are matched case-insensitively.
func (c UsersConfig) InviteRole(code string) (string, bool) {
	code = strings.ToUpper(CleanString(code))
	if code == "" {
		return "", false
	}
	for k, role := range c.InviteCodes {
		if strings.ToUpper(k) == code {
			return role, true
		}
	}
	return "", false
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Teacher's Club")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.secretKey", "k8s-$7tc!x0b+club=teach3rs&9f2(q!z)rp#w4v@1m^e6hj")
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.authRateLimit", 1.0)
	v.SetDefault("server.authRateBurst", 5)

	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "teachersclub")
	v.SetDefault("database.user", "teachersclub")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.sqlitePath", "teachersclub.db")
	v.SetDefault("database.logQueries", false)
	v.SetDefault("database.maxOpenConns", 100)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")

	v.SetDefault("users.inviteCodes", map[string]string{
		"ADMIN2025":     "admin",
		"MODERATOR2025": "moderator",
		"TEACHER2025":   "teacher",
		"STUDENT2025":   "student",
	})
	v.SetDefault("users.deletionPolicy", DeletionSoft)
	v.SetDefault("users.commonPasswordsPath", "")

	v.SetDefault("stats.interval", 5*time.Second)

	v.SetDefault("media.backend", "local")
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.baseURL", "/media")
	v.SetDefault("media.maxUploadSize", int64(5<<20))
	v.SetDefault("media.s3Bucket", "")
	v.SetDefault("media.s3Endpoint", "")
	v.SetDefault("media.s3Region", "auto")
	v.SetDefault("media.s3AccessKey", "")
	v.SetDefault("media.s3SecretKey", "")
	v.SetDefault("media.s3PublicURL", "")

	v.SetDefault("avatars.enabled", false)
	v.SetDefault("avatars.baseURL", "https://www.gravatar.com")
	v.SetDefault("avatars.timeout", 2*time.Second)

	v.SetDefault("email.sendgridApiKey", "")
	v.SetDefault("email.defaultFromEmail", "noreply@localhost")
	v.SetDefault("email.defaultFromName", "Teacher's Club")
	v.SetDefault("email.frontendBaseURL", "http://localhost:3000")
}

// NewConfig loads the configuration for the current ENV (DEV (default), TEST, QA, PROD).
// Values are read from defaults, then from `config/.env.<env>` if it exists, then from
// environment variables prefixed with the ENV name (eg. PROD_SERVER_PORT).
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetString("server.port"),
			DebugHost:                 v.GetString("server.debugHost"),
			SecretKey:                 v.GetString("server.secretKey"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			AuthRateLimit:             v.GetFloat64("server.authRateLimit"),
			AuthRateBurst:             v.GetInt("server.authRateBurst"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			SQLitePath:    v.GetString("database.sqlitePath"),
			LogQueries:    v.GetBool("database.logQueries"),
			MaxOpenConns:  v.GetInt("database.maxOpenConns"),
			MaxIdleConns:  v.GetInt("database.maxIdleConns"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
		},
		Users: UsersConfig{
			InviteCodes:         v.GetStringMapString("users.inviteCodes"),
			DeletionPolicy:      v.GetString("users.deletionPolicy"),
			CommonPasswordsPath: v.GetString("users.commonPasswordsPath"),
		},
		Stats: StatsConfig{
			Interval: v.GetDuration("stats.interval"),
		},
		Media: MediaConfig{
			Backend:       v.GetString("media.backend"),
			Dir:           v.GetString("media.dir"),
			BaseURL:       v.GetString("media.baseURL"),
			MaxUploadSize: v.GetInt64("media.maxUploadSize"),
			S3Bucket:      v.GetString("media.s3Bucket"),
			S3Endpoint:    v.GetString("media.s3Endpoint"),
			S3Region:      v.GetString("media.s3Region"),
			S3AccessKey:   v.GetString("media.s3AccessKey"),
			S3SecretKey:   v.GetString("media.s3SecretKey"),
			S3PublicURL:   v.GetString("media.s3PublicURL"),
		},
		Avatars: AvatarsConfig{
			Enabled: v.GetBool("avatars.enabled"),
			BaseURL: v.GetString("avatars.baseURL"),
			Timeout: v.GetDuration("avatars.timeout"),
		},
		Email: EmailConfig{
			SendgridAPIKey: v.GetString("email.sendgridApiKey"),
			DefaultFromEmail: mail.Address{
				Name:    v.GetString("email.defaultFromName"),
				Address: v.GetString("email.defaultFromEmail"),
			},
			FrontendBaseURL: v.GetString("email.frontendBaseURL"),
		},
	}

	if err := conf.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

func (c *Config) validate() error {
	switch c.Users.DeletionPolicy {
	case DeletionSoft, DeletionHard:
	default:
		return fmt.Errorf("invalid users.deletionPolicy %q (want %q or %q)", c.Users.DeletionPolicy, DeletionSoft, DeletionHard)
	}
	if c.Stats.Interval <= 0 {
		return fmt.Errorf("invalid stats.interval %s", c.Stats.Interval)
	}
	return nil
}

// NewTestConfig returns the configuration used by tests: no env lookups, in-memory friendly defaults.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{
		Env:      "TEST",
		Build:    "test",
		AppName:  v.GetString("appName"),
		TestMode: true,
		Server: ServerConfig{
			SecretKey:                 "test-secret",
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			AuthRateLimit:             1000,
			AuthRateBurst:             1000,
		},
		Database: DatabaseConfig{Engine: "sqlite", SQLitePath: "file::memory:"},
		Users: UsersConfig{
			InviteCodes:    v.GetStringMapString("users.inviteCodes"),
			DeletionPolicy: DeletionSoft,
		},
		Stats: StatsConfig{Interval: v.GetDuration("stats.interval")},
		Media: MediaConfig{
			Backend:       "local",
			BaseURL:       "/media",
			MaxUploadSize: v.GetInt64("media.maxUploadSize"),
		},
		Avatars: AvatarsConfig{Timeout: v.GetDuration("avatars.timeout")},
		Email: EmailConfig{
			DefaultFromEmail: mail.Address{Name: "Teacher's Club", Address: "noreply@localhost"},
			FrontendBaseURL:  "http://localhost:3000",
		},
	}
}
