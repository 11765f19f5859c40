package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/RecoveryAshes/CnkiCrawl/internal/utils"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Browser  BrowserConfig     `mapstructure:"browser"`
	Search   SearchConfig      `mapstructure:"search"`
	Detail   DetailConfig      `mapstructure:"detail"`
	Headers  map[string]string `mapstructure:"headers"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	Output   OutputConfig      `mapstructure:"output"`
	Resource ResourceConfig    `mapstructure:"resource"`
}

// BrowserConfig 浏览器与会话池配置
type BrowserConfig struct {
	Headless        bool          `mapstructure:"headless"`
	Bin             string        `mapstructure:"bin"`
	NoSandbox       bool          `mapstructure:"no_sandbox"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	LivenessTimeout time.Duration `mapstructure:"liveness_timeout"`
}

// SearchConfig 检索流程配置
type SearchConfig struct {
	ResultsTimeout time.Duration `mapstructure:"results_timeout"`
	ElementTimeout time.Duration `mapstructure:"element_timeout"`
	Humanize       bool          `mapstructure:"humanize"`
	BatchDelay     time.Duration `mapstructure:"batch_delay"`
}

// DetailConfig 详情页配置
type DetailConfig struct {
	Mode           string        `mapstructure:"mode"` // browser | static
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// ResourceConfig 资源检查配置
type ResourceConfig struct {
	SafetyThresholdMB uint64 `mapstructure:"safety_threshold_mb"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cnkicrawl"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.idle_timeout", 600*time.Second)
	v.SetDefault("browser.liveness_timeout", 5*time.Second)

	v.SetDefault("search.results_timeout", 15*time.Second)
	v.SetDefault("search.element_timeout", 10*time.Second)
	v.SetDefault("search.humanize", true)
	v.SetDefault("search.batch_delay", 3*time.Second)

	v.SetDefault("detail.mode", "browser")
	v.SetDefault("detail.request_timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.format", "json")
	v.SetDefault("output.dir", "output")

	v.SetDefault("resource.safety_threshold_mb", 500)
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// StaticDetail 详情是否走静态HTTP抓取
func (c *Config) StaticDetail() bool {
	return c.Detail.Mode == "static"
}
