package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultResetTokenTTL   = time.Hour
	defaultMinPasswordLen  = 8
	defaultCleanupSchedule = "@every 1h"

	RefreshStoreDriverPostgres = "postgres"
	RefreshStoreDriverRedis    = "redis"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Migrations controls the embedded schema migrations run at startup
	Migrations *MigrationsConfig `json:"migrations" yaml:"migrations"`

	SecretKey struct {
		Access  string `json:"access" yaml:"access"`
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordPolicy *PasswordPolicyConfig `json:"passwordPolicy" yaml:"passwordPolicy"`

	// RefreshTokenStore selects the backend holding issued refresh tokens
	RefreshTokenStore *RefreshTokenStoreConfig `json:"refreshTokenStore" yaml:"refreshTokenStore"`

	// Notifier configuration for password reset delivery
	Notifier *NotifierConfig `json:"notifier" yaml:"notifier"`

	// Cleanup configuration for the expired token sweeper
	Cleanup *CleanupConfig `json:"cleanup" yaml:"cleanup"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost      int           `json:"bcryptCost" yaml:"bcryptCost"`
	Issuer          string        `json:"issuer" yaml:"issuer"`
	AccessTokenTTL  time.Duration `json:"accessTokenTTL" yaml:"accessTokenTTL"`
	RefreshTokenTTL time.Duration `json:"refreshTokenTTL" yaml:"refreshTokenTTL"`
	ResetTokenTTL   time.Duration `json:"resetTokenTTL" yaml:"resetTokenTTL"`

	// SingleSession revokes every prior refresh token of a user on login
	SingleSession bool `json:"singleSession" yaml:"singleSession"`

	// RotateRefreshTokens swaps the presented refresh token for a new one on every refresh
	RotateRefreshTokens bool `json:"rotateRefreshTokens" yaml:"rotateRefreshTokens"`
}

// PasswordPolicyConfig defines password length requirements
type PasswordPolicyConfig struct {
	MinLength int `json:"minLength" yaml:"minLength"`
}

type MigrationsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// RefreshTokenStoreConfig selects "postgres" (default) or "redis"
type RefreshTokenStoreConfig struct {
	Driver string       `json:"driver" yaml:"driver"`
	Redis  *RedisConfig `json:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	PoolSize  int    `json:"poolSize" yaml:"poolSize"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// NotifierConfig defines how password reset tokens leave the service
type NotifierConfig struct {
	// Provider type: "log" for development, "webhook" for a local HTTP endpoint or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// HTTP endpoint (for webhook provider)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// ResetURL is the frontend page the token is appended to
	ResetURL string `json:"resetUrl" yaml:"resetUrl"`
}

type CleanupConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Schedule string `json:"schedule" yaml:"schedule"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// SECRETKEY_ACCESS -> secretKey.access, aligned with the YAML casing.
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills optional sections left out of the YAML file.
func (cfg *Config) ApplyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{SingleSession: true}
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		cfg.Auth.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.Auth.RefreshTokenTTL <= 0 {
		cfg.Auth.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	if cfg.Auth.ResetTokenTTL <= 0 {
		cfg.Auth.ResetTokenTTL = defaultResetTokenTTL
	}

	if cfg.PasswordPolicy == nil {
		cfg.PasswordPolicy = &PasswordPolicyConfig{}
	}
	if cfg.PasswordPolicy.MinLength <= 0 {
		cfg.PasswordPolicy.MinLength = defaultMinPasswordLen
	}

	if cfg.Migrations == nil {
		cfg.Migrations = &MigrationsConfig{Enabled: true}
	}

	if cfg.RefreshTokenStore == nil {
		cfg.RefreshTokenStore = &RefreshTokenStoreConfig{}
	}
	if cfg.RefreshTokenStore.Driver == "" {
		cfg.RefreshTokenStore.Driver = RefreshStoreDriverPostgres
	}

	if cfg.Notifier == nil {
		cfg.Notifier = &NotifierConfig{Provider: "log"}
	}

	if cfg.Cleanup == nil {
		cfg.Cleanup = &CleanupConfig{Enabled: true}
	}
	if strings.TrimSpace(cfg.Cleanup.Schedule) == "" {
		cfg.Cleanup.Schedule = defaultCleanupSchedule
	}
}

// Validate rejects configurations the service cannot start with.
func (cfg *Config) Validate() error {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return errors.New("secretKey.access and secretKey.refresh must be set")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return errors.New("secretKey.access and secretKey.refresh must differ")
	}

	switch cfg.RefreshTokenStore.Driver {
	case RefreshStoreDriverPostgres:
	case RefreshStoreDriverRedis:
		if cfg.RefreshTokenStore.Redis == nil || cfg.RefreshTokenStore.Redis.Addr == "" {
			return errors.New("refreshTokenStore.redis.addr is required for the redis driver")
		}
	default:
		return errors.Errorf("unsupported refreshTokenStore driver: %s", cfg.RefreshTokenStore.Driver)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}
// until the first incomplete index.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
