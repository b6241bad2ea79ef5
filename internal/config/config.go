package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Rule creator providers
const (
	ProviderHTTP   = "http"
	ProviderOpenAI = "openai"
)

// Directory providers
const (
	DirectoryREST   = "rest"
	DirectorySQLite = "sqlite"
)

// DefaultTenantID is the placeholder tenant the rule chat sends with every prompt.
const DefaultTenantID = "553e4567-e89b-12d3-a456-426614174000"

// Config holds the application configuration
type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Server    ServerConfig    `mapstructure:"server"`
	Rules     RulesConfig     `mapstructure:"rules"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Identity  IdentityConfig  `mapstructure:"identity"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// RulesConfig describes the rule-creation endpoint.
type RulesConfig struct {
	Provider string `mapstructure:"provider"`
	URL      string `mapstructure:"url"`
	TenantID string `mapstructure:"tenant_id"`
	// Zero means no timeout on the outbound request.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds the LLM configuration used by the openai rule provider
type LLMConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

// DirectoryConfig selects where tenants, groups, roles and users come from.
type DirectoryConfig struct {
	Provider string `mapstructure:"provider"`
	DBPath   string `mapstructure:"db_path"`
}

// AdminConfig points at the admin REST backend.
type AdminConfig struct {
	URL string `mapstructure:"url"`
}

// IdentityConfig holds identity provider settings.
type IdentityConfig struct {
	// HMAC secret used to verify bearer tokens. Empty disables verification.
	Secret string `mapstructure:"secret"`
	Token  string `mapstructure:"token"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("rules.provider", ProviderHTTP)
	v.SetDefault("rules.url", "http://localhost:4002/api/rules/create")
	v.SetDefault("rules.tenant_id", DefaultTenantID)
	v.SetDefault("rules.timeout", time.Duration(0))
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("directory.provider", DirectoryREST)
	v.SetDefault("directory.db_path", "console.db")
	v.SetDefault("admin.url", "http://localhost:4001")
}

// Load loads the configuration from config.yaml, or the file named by CONFIG_PATH.
// A missing file is not an error: defaults and CONSOLE_* environment variables apply.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
