package config

import (
	"fmt"

	"github.com/spf13/viper"
)

var GlobalConfig *Config

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Evidence EvidenceConfig `mapstructure:"evidence"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	DB       interface{}    // 数据库连接,运行时注入
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	LogLevel        string `mapstructure:"log_level"`         // SQL日志级别: silent/error/warn/info
}

// AuthConfig 认证配置
type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret                  string `mapstructure:"secret"`
	SessionExpire           int    `mapstructure:"session_expire"`            // 秒, 默认7天
	VerificationTokenExpire int    `mapstructure:"verification_token_expire"` // 秒, 默认24小时
	ResetTokenExpire        int    `mapstructure:"reset_token_expire"`        // 秒, 默认1小时
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // json, console
	Output   string `mapstructure:"output"` // stdout, file
	FilePath string `mapstructure:"file_path"`
}

// NotifyConfig 邮件通知网关配置
type NotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"` // 邮件网关Webhook地址
	From       string `mapstructure:"from"`        // 发件人
}

// EvidenceConfig 证据链接配置
type EvidenceConfig struct {
	ProviderDomain string `mapstructure:"provider_domain"` // 证据平台域名, 默认 jam.dev
}

// CleanupConfig 过期令牌清理配置
type CleanupConfig struct {
	Cron string `mapstructure:"cron"` // Cron表达式
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 读取环境变量
	v.AutomaticEnv()

	// 默认值
	v.SetDefault("auth.jwt.session_expire", 7*24*3600)
	v.SetDefault("auth.jwt.verification_token_expire", 24*3600)
	v.SetDefault("auth.jwt.reset_token_expire", 3600)
	v.SetDefault("evidence.provider_domain", "jam.dev")
	v.SetDefault("cleanup.cron", "@hourly")

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析配置
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 设置全局配置
	GlobalConfig = config

	return config, nil
}

// GetDSN 获取数据库DSN
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}
