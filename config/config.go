// koanf_api
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
)

//Main Config
type MainConfig struct {
	General GeneralConfig `koanf:"general"`
	Backend BackendConfig `koanf:"backend"`
	UI      UIConfig      `koanf:"ui"`
}

type GeneralConfig struct {
	WebListen         string   `koanf:"WebListen"`
	WebPort           string   `koanf:"WebPort"`
	LogLevel          string   `koanf:"LogLevel"`
	LogFileName       string   `koanf:"LogFileName"`
	LogFileSize       int      `koanf:"LogFileSize"`
	LogFileCount      int      `koanf:"LogFileCount"`
	LogCompress       bool     `koanf:"LogCompress"`
	EnableFileWatcher bool     `koanf:"EnableFileWatcher"`
	EnablePprof       bool     `koanf:"EnablePprof"`
	CorsOrigins       []string `koanf:"CorsOrigins"`
}

// BackendConfig points the console at the holmes server it administrates.
type BackendConfig struct {
	BaseURL        string `koanf:"BaseURL"`
	TimeoutSeconds int    `koanf:"TimeoutSeconds"`
	LimiterSeconds int    `koanf:"LimiterSeconds"`
	LimiterCalls   int    `koanf:"LimiterCalls"`
	UserAgent      string `koanf:"UserAgent"`
}

type UIConfig struct {
	Locale             string `koanf:"Locale"`
	BundleDir          string `koanf:"BundleDir"`
	RowCacheTTLMinutes int    `koanf:"RowCacheTTLMinutes"`
	GridHeight         int    `koanf:"GridHeight"`
	// LegacyConfigErrorMessage shows the reference error the old admin page
	// produced instead of the backend message when a configuration save fails.
	LegacyConfigErrorMessage bool `koanf:"LegacyConfigErrorMessage"`
}

const Configfile string = "config.toml"

// Default returns the configuration used for every key missing in the file.
func Default() MainConfig {
	return MainConfig{
		General: GeneralConfig{
			WebPort:      "8086",
			LogLevel:     "Info",
			LogFileSize:  10,
			LogFileCount: 5,
		},
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8085",
			TimeoutSeconds: 10,
			LimiterSeconds: 1,
			LimiterCalls:   20,
			UserAgent:      "holmes_admin",
		},
		UI: UIConfig{
			Locale:             "en",
			RowCacheTTLMinutes: 10,
			GridHeight:         300,
		},
	}
}

func LoadCfg(configfile string) (MainConfig, *file.File, error) {
	f := file.Provider(configfile)
	cfg, err := LoadCfgData(f, configfile)
	if err != nil {
		return MainConfig{}, nil, err
	}
	return cfg, f, nil
}

func Watch(f *file.File, configfile string, reloaded func(MainConfig)) {
	f.Watch(func(event interface{}, err error) {
		if err != nil {
			log.Printf("watch error: %v", err)
			return
		}

		log.Println("cfg reloaded")
		time.Sleep(time.Duration(2) * time.Second)
		cfg, err := LoadCfgData(f, configfile)
		if err != nil {
			log.Printf("reload error: %v", err)
			return
		}
		reloaded(cfg)
	})
}

func LoadCfgData(f koanf.Provider, configfile string) (MainConfig, error) {
	var k = koanf.New(".")

	if !strings.Contains(configfile, "toml") {
		return MainConfig{}, fmt.Errorf("unsupported config format: %s", configfile)
	}
	if err := k.Load(f, toml.Parser()); err != nil {
		fmt.Println("Error loading config. ", err)
		return MainConfig{}, err
	}
	if k.Sprint() == "" {
		fmt.Println("Error loading config. Config Empty")
		return MainConfig{}, errors.New("error loading config")
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return MainConfig{}, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return MainConfig{}, err
	}
	return cfg, nil
}

// applyDefaults restores defaults for keys present in the file but set to zero values.
func applyDefaults(cfg *MainConfig) {
	def := Default()
	if cfg.General.WebPort == "" {
		cfg.General.WebPort = def.General.WebPort
	}
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = def.General.LogLevel
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = def.Backend.BaseURL
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = def.Backend.TimeoutSeconds
	}
	if cfg.Backend.LimiterSeconds <= 0 {
		cfg.Backend.LimiterSeconds = def.Backend.LimiterSeconds
	}
	if cfg.Backend.LimiterCalls <= 0 {
		cfg.Backend.LimiterCalls = def.Backend.LimiterCalls
	}
	if cfg.Backend.UserAgent == "" {
		cfg.Backend.UserAgent = def.Backend.UserAgent
	}
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = def.UI.Locale
	}
	if cfg.UI.RowCacheTTLMinutes <= 0 {
		cfg.UI.RowCacheTTLMinutes = def.UI.RowCacheTTLMinutes
	}
	if cfg.UI.GridHeight <= 0 {
		cfg.UI.GridHeight = def.UI.GridHeight
	}
}

func (c MainConfig) Validate() error {
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend BaseURL must be an http(s) url: %q", c.Backend.BaseURL)
	}
	return nil
}

func (c MainConfig) ListenAddr() string {
	return c.General.WebListen + ":" + c.General.WebPort
}

func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c UIConfig) RowCacheTTL() time.Duration {
	return time.Duration(c.RowCacheTTLMinutes) * time.Minute
}
