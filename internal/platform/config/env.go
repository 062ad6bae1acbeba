// Package config loads server settings from the environment and reward
// tuning from an optional YAML balance file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Server holds the hero-server settings.
type Server struct {
	Addr               string        `env:"HERO_ADDR" envDefault:":8080"`
	DBPath             string        `env:"HERO_DB_PATH" envDefault:"data/hero.db"`
	GameID             string        `env:"HERO_GAME_ID" envDefault:"default"`
	BalancePath        string        `env:"HERO_BALANCE_PATH"`
	Seed               uint64        `env:"HERO_SEED"` // 0 draws a random seed
	DailyCheckInterval time.Duration `env:"HERO_DAILY_CHECK_INTERVAL" envDefault:"1m"`
	ShutdownTimeout    time.Duration `env:"HERO_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Profile            string        `env:"HERO_PROFILE" envDefault:"default"`
	ClientSendBuffer   int           `env:"HERO_CLIENT_SEND_BUFFER"` // 0 keeps the profile value
}

// Client holds the hero-client settings.
type Client struct {
	ServerURL string        `env:"HERO_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	Timeout   time.Duration `env:"HERO_CLIENT_TIMEOUT" envDefault:"10s"`
}

// LoadServer parses and checks the server settings.
func LoadServer() (Server, error) {
	var s Server
	if err := ParseEnv(&s); err != nil {
		return Server{}, err
	}
	if err := s.Validate(); err != nil {
		return Server{}, err
	}
	return s, nil
}

// LoadClient parses the client settings.
func LoadClient() (Client, error) {
	var c Client
	if err := ParseEnv(&c); err != nil {
		return Client{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot run with.
func (s Server) Validate() error {
	var errs []error
	if s.GameID == "" {
		errs = append(errs, errors.New("HERO_GAME_ID must not be empty"))
	}
	if s.DBPath == "" {
		errs = append(errs, errors.New("HERO_DB_PATH must not be empty"))
	}
	if s.DailyCheckInterval <= 0 {
		errs = append(errs, errors.New("HERO_DAILY_CHECK_INTERVAL must be positive"))
	}
	if s.ClientSendBuffer < 0 {
		errs = append(errs, errors.New("HERO_CLIENT_SEND_BUFFER must not be negative"))
	}
	if _, ok := Profiles[s.Profile]; !ok {
		errs = append(errs, fmt.Errorf("HERO_PROFILE %q is unknown", s.Profile))
	}
	return errors.Join(errs...)
}

// Tuning returns the selected profile with overrides applied.
func (s Server) Tuning() Tuning {
	t, ok := Profiles[s.Profile]
	if !ok {
		t = DefaultTuning()
	}
	if s.ClientSendBuffer > 0 {
		t.ClientSendBuffer = s.ClientSendBuffer
	}
	return t
}
