package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// fileConfig is the optional TOML file read by the CLI.
//
//	[fiscal]
//	start_month = 4
//	start_day = 6
//	future = 4
//	past = 4
type fileConfig struct {
	Fiscal fiscalConfig `toml:"fiscal"`
}

type fiscalConfig struct {
	StartMonth int  `toml:"start_month"`
	StartDay   int  `toml:"start_day"`
	Future     *int `toml:"future,omitempty"`
	Past       *int `toml:"past,omitempty"`
}

// defaultWindow applies when neither flags nor the file set a window.
var defaultWindow = fiscal.Window{Future: 4, Past: 4}

// configDir returns the XDG-compliant config directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fiscal-periods")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fiscal-periods")
}

// defaultConfigPath returns the full path to the config file.
func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// loadFileConfig reads path. An explicit path must exist; the default
// path is optional.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// start returns the fiscal year start from the file, or the zero value
// when unset. A month without a day starts on the 1st.
func (c fileConfig) start() fiscal.FiscalYearStart {
	s := fiscal.FiscalYearStart{
		Month: time.Month(c.Fiscal.StartMonth),
		Day:   c.Fiscal.StartDay,
	}
	if s.Month != 0 && s.Day == 0 {
		s.Day = 1
	}
	return s
}

// window returns the file's window, falling back to defaultWindow per field.
func (c fileConfig) window() fiscal.Window {
	w := defaultWindow
	if c.Fiscal.Future != nil {
		w.Future = *c.Fiscal.Future
	}
	if c.Fiscal.Past != nil {
		w.Past = *c.Fiscal.Past
	}
	return w
}
