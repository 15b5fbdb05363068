// config.go - Emulator configuration: defaults, YAML file, environment and flags

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/ccemux
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultTermWidth   = 51
	defaultTermHeight  = 19
	defaultTermScale   = 2.0
	defaultMaxCapacity = 2 * 1024 * 1024
	defaultRenderer    = "ebiten"

	configEnvPrefix = "CCEMUX"
)

// EmuConfig is the user-facing emulator configuration.
type EmuConfig struct {
	TermWidth           int     `mapstructure:"term_width" yaml:"term_width"`
	TermHeight          int     `mapstructure:"term_height" yaml:"term_height"`
	TermScale           float64 `mapstructure:"term_scale" yaml:"term_scale"`
	NativePaste         bool    `mapstructure:"native_paste" yaml:"native_paste"`
	MaxComputerCapacity int64   `mapstructure:"max_computer_capacity" yaml:"max_computer_capacity"`
	Renderer            string  `mapstructure:"renderer" yaml:"renderer"`
	FontPath            string  `mapstructure:"font_path" yaml:"font_path,omitempty"`
	IconPath            string  `mapstructure:"icon_path" yaml:"icon_path,omitempty"`
	StartupScript       string  `mapstructure:"startup_script" yaml:"startup_script,omitempty"`
}

func DefaultConfig() EmuConfig {
	return EmuConfig{
		TermWidth:           defaultTermWidth,
		TermHeight:          defaultTermHeight,
		TermScale:           defaultTermScale,
		MaxComputerCapacity: defaultMaxCapacity,
		Renderer:            defaultRenderer,
	}
}

// Validate rejects configurations the renderer cannot lay out.
func (c EmuConfig) Validate() error {
	var errs []error
	if c.TermWidth <= 0 || c.TermHeight <= 0 {
		errs = append(errs, fmt.Errorf("terminal size %dx%d must be positive", c.TermWidth, c.TermHeight))
	}
	if c.TermScale <= 0 {
		errs = append(errs, fmt.Errorf("term_scale %v must be positive", c.TermScale))
	}
	if pw, ph, _ := frameGeometry(c.TermScale); c.TermScale > 0 && (pw == 0 || ph == 0) {
		errs = append(errs, fmt.Errorf("term_scale %v is too small", c.TermScale))
	}
	if c.MaxComputerCapacity < 0 {
		errs = append(errs, fmt.Errorf("max_computer_capacity %d must not be negative", c.MaxComputerCapacity))
	}
	if _, ok := rendererHosts[c.Renderer]; !ok {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRenderer, c.Renderer))
	}
	return errors.Join(errs...)
}

// DefaultConfigPath is $XDG_CONFIG_HOME/ccemux/ccemux.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ccemux", "ccemux.yaml"), nil
}

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"width":        "term_width",
	"height":       "term_height",
	"scale":        "term_scale",
	"native-paste": "native_paste",
	"renderer":     "renderer",
	"font":         "font_path",
	"icon":         "icon_path",
	"script":       "startup_script",
}

// LoadConfig layers defaults, the YAML file at path, CCEMUX_* environment
// variables and any flags that were set. A missing file is not an error.
func LoadConfig(path string, flags *pflag.FlagSet) (EmuConfig, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err == nil {
			path = p
		}
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("term_width", cfg.TermWidth)
	v.SetDefault("term_height", cfg.TermHeight)
	v.SetDefault("term_scale", cfg.TermScale)
	v.SetDefault("native_paste", cfg.NativePaste)
	v.SetDefault("max_computer_capacity", cfg.MaxComputerCapacity)
	v.SetDefault("renderer", cfg.Renderer)
	v.SetDefault("font_path", cfg.FontPath)
	v.SetDefault("icon_path", cfg.IconPath)
	v.SetDefault("startup_script", cfg.StartupScript)

	v.SetEnvPrefix(configEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return EmuConfig{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return EmuConfig{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return EmuConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EmuConfig{}, err
	}
	return cfg, nil
}

// addConfigFlags registers the configuration flags on fs.
func addConfigFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.Int("width", d.TermWidth, "terminal width in cells")
	fs.Int("height", d.TermHeight, "terminal height in cells")
	fs.Float64("scale", d.TermScale, "display scale factor")
	fs.Bool("native-paste", d.NativePaste, "use the platform paste shortcuts")
	fs.String("renderer", d.Renderer, "renderer backend ("+strings.Join(rendererNames(), ", ")+")")
	fs.String("font", d.FontPath, "PNG font sheet (16x16 glyph grid)")
	fs.String("icon", d.IconPath, "window icon PNG")
	fs.String("script", d.StartupScript, "Lua startup script replacing the built-in shell")
}

// ConfigMap renders cfg as YAML. Without includeDefaults only values that
// differ from the defaults are written.
func ConfigMap(cfg EmuConfig, includeDefaults bool) ([]byte, error) {
	if includeDefaults {
		return yaml.Marshal(cfg)
	}
	var full, def map[string]any
	if err := remarshal(cfg, &full); err != nil {
		return nil, err
	}
	if err := remarshal(DefaultConfig(), &def); err != nil {
		return nil, err
	}
	for k, v := range def {
		if fmt.Sprint(full[k]) == fmt.Sprint(v) {
			delete(full, k)
		}
	}
	if len(full) == 0 {
		return []byte("{}\n"), nil
	}
	return yaml.Marshal(full)
}

func remarshal(in any, out *map[string]any) error {
	raw, err := yaml.Marshal(in)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}
