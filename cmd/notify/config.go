package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("notify: invalid config")

const (
	KindLog   = "log"
	KindDelay = "delay"
	KindFail  = "fail"
	KindNoop  = "noop"
)

// Settings are read from the environment and then overridden by flags.
type Settings struct {
	ConfigPath string        `env:"NOTIFY_CONFIG" envDefault:"listeners.yaml"`
	LogLevel   string        `env:"NOTIFY_LOG_LEVEL" envDefault:"info"`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"0s"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, errors.Wrap(err, "parse environment")
	}
	return s, nil
}

type ListenerConfig struct {
	Name  string        `yaml:"name"`
	Kind  string        `yaml:"kind"`
	Delay time.Duration `yaml:"delay"`
	Error string        `yaml:"error"`
}

type FileConfig struct {
	Listeners []ListenerConfig `yaml:"listeners"`
}

func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return ParseFileConfig(data)
}

func ParseFileConfig(data []byte) (*FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *FileConfig) Validate() error {
	seen := make(map[string]bool, len(c.Listeners))
	for i, l := range c.Listeners {
		if l.Name == "" {
			return fmt.Errorf("%w: listener #%d has no name", ErrInvalidConfig, i)
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate listener name %q", ErrInvalidConfig, l.Name)
		}
		seen[l.Name] = true
		switch l.Kind {
		case KindLog, KindNoop, KindFail:
		case KindDelay:
			if l.Delay < 0 {
				return fmt.Errorf("%w: listener %q has negative delay", ErrInvalidConfig, l.Name)
			}
		default:
			return fmt.Errorf("%w: listener %q has unknown kind %q", ErrInvalidConfig, l.Name, l.Kind)
		}
	}
	return nil
}
