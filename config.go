package scheduler

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config carries the build/construction-time constants the host
// supplies: table capacities and feature toggles. Struct tags cover
// json, yaml, toml, and env so a host can decode it from whichever
// configuration format it already uses.
type Config struct {
	// TaskCapacity is the fixed size of the task table. Must be >= 2 when
	// EventsEnabled is true (slot 0 is reserved for the system event
	// delay-watcher task), else >= 1. Must be <= 65535.
	TaskCapacity int `json:"taskCapacity" yaml:"taskCapacity" toml:"task_capacity" env:"TASK_CAPACITY"`

	// EventCapacity is the fixed size of the event table. Zero disables
	// event tasks entirely (EventsEnabled reports false).
	EventCapacity int `json:"eventCapacity" yaml:"eventCapacity" toml:"event_capacity" env:"EVENT_CAPACITY"`

	// FireQueueCapacity bounds the per-iteration fire queue. Defaults to
	// EventCapacity when zero, since the fire queue can never hold more
	// distinct pending events than exist.
	FireQueueCapacity int `json:"fireQueueCapacity" yaml:"fireQueueCapacity" toml:"fire_queue_capacity" env:"FIRE_QUEUE_CAPACITY"`

	// AutoSleep invokes the Sleeper hook when nothing is runnable (the
	// time queue is empty or its head is not yet due) and no idle hook is
	// installed. Requires EventsEnabled.
	AutoSleep bool `json:"autoSleep" yaml:"autoSleep" toml:"auto_sleep" env:"AUTO_SLEEP"`

	// IdleHookEnabled registers the idle hook invocation path. The hook
	// itself is supplied separately via RegisterIdle.
	IdleHookEnabled bool `json:"idleHookEnabled" yaml:"idleHookEnabled" toml:"idle_hook_enabled" env:"IDLE_HOOK_ENABLED"`
}

// DefaultConfig returns the smallest legal configuration: one task slot,
// no events, no optional features. Callers building an embedded system
// normally override TaskCapacity/EventCapacity for their workload.
func DefaultConfig() Config {
	return Config{
		TaskCapacity:      1,
		EventCapacity:     0,
		FireQueueCapacity: 0,
		AutoSleep:         false,
		IdleHookEnabled:   false,
	}
}

// EventsEnabled reports whether event tasks are usable under this config.
func (c Config) EventsEnabled() bool {
	return c.EventCapacity > 0
}

// Validate enforces the construction-time capacity and feature-toggle
// constraints.
func (c Config) Validate() error {
	if c.EventCapacity < 0 {
		return fmt.Errorf("%w: event capacity %d must be >= 0", ErrConfigInvalid, c.EventCapacity)
	}
	if c.TaskCapacity > 65535 {
		return fmt.Errorf("%w: task capacity %d exceeds 65535", ErrConfigInvalid, c.TaskCapacity)
	}
	if c.EventsEnabled() {
		if c.TaskCapacity < 2 {
			return fmt.Errorf("%w: task capacity %d must be >= 2 when events are enabled (slot reserved for delay-watcher)", ErrConfigInvalid, c.TaskCapacity)
		}
	} else {
		if c.TaskCapacity < 1 {
			return fmt.Errorf("%w: task capacity %d must be >= 1", ErrConfigInvalid, c.TaskCapacity)
		}
		if c.AutoSleep {
			return fmt.Errorf("%w: auto-sleep requires events to be enabled", ErrConfigInvalid)
		}
	}
	return nil
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("scheduler: failed to decode toml config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigYAML reads a YAML configuration file, the counterpart format
// to LoadConfig for hosts that prefer YAML.
func LoadConfigYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("scheduler: failed to decode yaml config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
