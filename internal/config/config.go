// Package config loads the wallet's TOML configuration, the known keys
// of spec.md §6, via viper.
package config

import (
	"github.com/spf13/viper"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

// UI holds the window/appearance settings.
type UI struct {
	FontSize   uint32 `mapstructure:"font_size"`
	FontFamily string `mapstructure:"font_family"`
	WinWidth   uint32 `mapstructure:"win_width"`
	WinHeight  uint32 `mapstructure:"win_height"`
	Language   string `mapstructure:"language"`
}

// Account holds the send-policy ceilings and dust filter.
type Account struct {
	MaxFeeRate      uint32  `mapstructure:"max_feerate"`
	MaxFeeAmount    uint32  `mapstructure:"max_fee_amount"`
	MaxSendAmount   float64 `mapstructure:"max_send_amount"`
	SkipUTXOAmount  uint32  `mapstructure:"skip_utxo_amount"`
}

// Socks5 holds optional SOCKS5 proxy settings for outbound HTTP.
type Socks5 struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Port    uint16 `mapstructure:"port"`
}

// Config is the full parsed configuration.
type Config struct {
	UI      UI      `mapstructure:"ui"`
	Account Account `mapstructure:"account"`
	Socks5  Socks5  `mapstructure:"socks5"`
}

// Defaults matches spec.md §6's documented default values.
func Defaults() Config {
	return Config{
		UI: UI{
			FontSize:   18,
			FontFamily: "sans-serif",
			WinWidth:   1024,
			WinHeight:  768,
			Language:   "en",
		},
		Account: Account{
			MaxFeeRate:     100,
			MaxFeeAmount:   10_000,
			MaxSendAmount:  1.0,
			SkipUTXOAmount: 1000,
		},
		Socks5: Socks5{
			Enabled: false,
			URL:     "127.0.0.1",
			Port:    9050,
		},
	}
}

// Load reads a TOML config file at path, falling back to Defaults() for
// any key the file does not set. An empty path reads no file and returns
// pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	defaults := Defaults()
	v.SetDefault("ui.font_size", defaults.UI.FontSize)
	v.SetDefault("ui.font_family", defaults.UI.FontFamily)
	v.SetDefault("ui.win_width", defaults.UI.WinWidth)
	v.SetDefault("ui.win_height", defaults.UI.WinHeight)
	v.SetDefault("ui.language", defaults.UI.Language)
	v.SetDefault("account.max_feerate", defaults.Account.MaxFeeRate)
	v.SetDefault("account.max_fee_amount", defaults.Account.MaxFeeAmount)
	v.SetDefault("account.max_send_amount", defaults.Account.MaxSendAmount)
	v.SetDefault("account.skip_utxo_amount", defaults.Account.SkipUTXOAmount)
	v.SetDefault("socks5.enabled", defaults.Socks5.Enabled)
	v.SetDefault("socks5.url", defaults.Socks5.URL)
	v.SetDefault("socks5.port", defaults.Socks5.Port)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindBadInput, "reading config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindBadInput, "decoding config", err)
	}
	return &cfg, nil
}
