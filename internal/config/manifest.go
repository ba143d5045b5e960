package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BotSpec is one bot instance the launcher spawns.
type BotSpec struct {
	Name     string            `yaml:"name"`
	TokenEnv string            `yaml:"token_env"`
	Port     int               `yaml:"port,omitempty"`
	Env      map[string]string `yaml:"env,omitempty"`
}

// Manifest lists the bots a launcher runs.
type Manifest struct {
	BasePort int           `yaml:"base_port"`
	Stagger  time.Duration `yaml:"stagger"`
	DataDir  string        `yaml:"data_dir"`
	Bots     []BotSpec     `yaml:"bots"`
}

// DefaultManifest runs the tickets bot alone.
func DefaultManifest() *Manifest {
	return &Manifest{
		BasePort: 10000,
		Stagger:  2 * time.Second,
		DataDir:  "data",
		Bots: []BotSpec{
			{Name: "nuvix_tickets", TokenEnv: "NUVIX_TICKETS_TOKEN"},
		},
	}
}

// LoadManifest reads a YAML manifest. A missing file yields the default manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultManifest(), nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(raw)
}

// ParseManifest decodes and validates manifest bytes, filling defaults.
func ParseManifest(raw []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	def := DefaultManifest()
	if m.BasePort == 0 {
		m.BasePort = def.BasePort
	}
	if m.Stagger == 0 {
		m.Stagger = def.Stagger
	}
	if m.DataDir == "" {
		m.DataDir = def.DataDir
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks bot names and ports are unique.
func (m *Manifest) Validate() error {
	if len(m.Bots) == 0 {
		return errors.New("manifest: no bots listed")
	}
	names := make(map[string]struct{}, len(m.Bots))
	ports := make(map[int]string, len(m.Bots))
	for i, bot := range m.Bots {
		if bot.Name == "" {
			return fmt.Errorf("manifest: bot %d has no name", i)
		}
		if bot.TokenEnv == "" {
			return fmt.Errorf("manifest: bot %s has no token_env", bot.Name)
		}
		if _, dup := names[bot.Name]; dup {
			return fmt.Errorf("manifest: duplicate bot name %s", bot.Name)
		}
		names[bot.Name] = struct{}{}
		port := m.PortFor(i)
		if other, dup := ports[port]; dup {
			return fmt.Errorf("manifest: bots %s and %s share port %d", other, bot.Name, port)
		}
		ports[port] = bot.Name
	}
	return nil
}

// PortFor returns the explicit port of bot i, or base_port+i.
func (m *Manifest) PortFor(i int) int {
	if m.Bots[i].Port != 0 {
		return m.Bots[i].Port
	}
	return m.BasePort + i
}
