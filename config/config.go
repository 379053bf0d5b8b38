// Package config 读取 docview 的配置：默认值、YAML 配置文件、DOCVIEW_* 环境变量与命令行参数，
// 优先级依次升高。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ByLCY/docview/fonts"
	"github.com/ByLCY/docview/layout"
	"github.com/ByLCY/docview/theme"
)

// EnvPrefix 是环境变量前缀，例如 DOCVIEW_BASE_SIZE。
const EnvPrefix = "DOCVIEW"

// LocalFile 是当前目录下的配置文件名。
const LocalFile = "docview.yaml"

// Config holds all configuration options for docview.
type Config struct {
	BaseSize float64               `mapstructure:"base_size" yaml:"base_size"`
	Theme    string                `mapstructure:"theme" yaml:"theme"`
	Assets   string                `mapstructure:"assets" yaml:"assets,omitempty"`
	Fonts    FontsConfig           `mapstructure:"fonts" yaml:"fonts"`
	Themes   map[string]theme.Spec `mapstructure:"themes" yaml:"themes,omitempty"`
	LogLevel string                `mapstructure:"log_level" yaml:"log_level"`
	Watch    WatchConfig           `mapstructure:"watch" yaml:"watch"`

	// File 是实际读取的配置文件，没有时为空。
	File string `mapstructure:"-" yaml:"-"`
}

// FontsConfig 是四种字体角色的来源：builtin:<name> 或字体文件路径。
type FontsConfig struct {
	Regular string `mapstructure:"regular" yaml:"regular"`
	Italic  string `mapstructure:"italic" yaml:"italic"`
	Bold    string `mapstructure:"bold" yaml:"bold"`
	Code    string `mapstructure:"code" yaml:"code"`
}

// WatchConfig 是文件监听的配置。
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseSize: 18,
		Theme:    theme.DefaultName,
		Fonts: FontsConfig{
			Regular: fonts.BuiltinPrefix + "regular",
			Italic:  fonts.BuiltinPrefix + "italic",
			Bold:    fonts.BuiltinPrefix + "bold",
			Code:    fonts.BuiltinPrefix + "mono",
		},
		LogLevel: "info",
		Watch:    WatchConfig{Debounce: 200 * time.Millisecond},
	}
}

// flagKeys 将命令行参数名映射到配置键。
var flagKeys = map[string]string{
	"base-size": "base_size",
	"theme":     "theme",
	"assets":    "assets",
	"log-level": "log_level",
	"debounce":  "watch.debounce",
}

// Load 读取配置。path 为空时依次查找 ./docview.yaml 与 ~/.config/docview/config.yaml，
// 找不到配置文件不算错误。flags 可为空；其中已声明的参数会覆盖配置文件与环境变量。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("base_size", defaults.BaseSize)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("assets", defaults.Assets)
	v.SetDefault("fonts.regular", defaults.Fonts.Regular)
	v.SetDefault("fonts.italic", defaults.Fonts.Italic)
	v.SetDefault("fonts.bold", defaults.Fonts.Bold)
	v.SetDefault("fonts.code", defaults.Fonts.Code)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("绑定参数 %s 失败: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(LocalFile); err == nil {
		v.SetConfigFile(LocalFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docview"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return &cfg, nil
}

// Validate 检查基准字号与主题名称。
func (c *Config) Validate() error {
	var errs []error
	if c.BaseSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: %g", layout.ErrInvalidBaseSize, c.BaseSize))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce 不能为负数: %s", c.Watch.Debounce))
	}
	reg, err := c.Registry()
	if err != nil {
		errs = append(errs, err)
	} else if _, err := reg.Lookup(c.Theme); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Registry 返回内置主题加上配置中自定义主题的主题表；自定义主题可覆盖同名内置主题。
func (c *Config) Registry() (*theme.Registry, error) {
	reg := theme.NewRegistry()
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		th, err := c.Themes[name].Parse(name)
		if err != nil {
			return nil, fmt.Errorf("主题 %s 配置错误: %w", name, err)
		}
		if err := reg.Register(th); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// ResolveTheme 返回当前选择的主题。
func (c *Config) ResolveTheme() (theme.Theme, error) {
	reg, err := c.Registry()
	if err != nil {
		return theme.Theme{}, err
	}
	return reg.Lookup(c.Theme)
}

// FontSet 把字体来源转换为排版使用的 FontSet。
func (c *Config) FontSet() layout.FontSet {
	return layout.FontSet{
		Regular: layout.FontResource{Name: "regular", Src: c.Fonts.Regular, Style: "regular"},
		Italic:  layout.FontResource{Name: "italic", Src: c.Fonts.Italic, Style: "italic"},
		Bold:    layout.FontResource{Name: "bold", Src: c.Fonts.Bold, Style: "bold"},
		Code:    layout.FontResource{Name: "code", Src: c.Fonts.Code, Style: "regular"},
	}
}

// LayoutConfig 返回排版配置。Assets 为空时由调用方使用文档所在目录。
func (c *Config) LayoutConfig() layout.Config {
	return layout.Config{
		BaseSize: c.BaseSize,
		Fonts:    c.FontSet(),
		AssetDir: c.Assets,
	}
}
