package config

import (
	"errors"
	"fmt"
)

var (
	ErrNoTargets = errors.New("no watch targets configured")
	ErrNoToken   = errors.New("CHATWORK_TOKEN is not set")
)

// Validate checks the settings the monitoring loop depends on.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("%w (see %s)", ErrNoTargets, c.Files.Targets)
	}
	for _, t := range c.Targets {
		if t.URL == "" || t.ChannelID == "" {
			return fmt.Errorf("target %d (%s): url and channel_id are required", t.Index, t.Key())
		}
	}
	if c.ChatWork.Token == "" {
		return ErrNoToken
	}
	m := c.Monitor
	if m.SleepStart < 0 || m.SleepStart > 23 || m.SleepEnd < 0 || m.SleepEnd > 24 {
		return fmt.Errorf("sleep window %d-%d out of range", m.SleepStart, m.SleepEnd)
	}
	if m.CheckInterval <= 0 || m.IdleInterval <= 0 {
		return fmt.Errorf("check and idle intervals must be > 0")
	}
	if c.Scraper.PageTimeout <= 0 {
		return fmt.Errorf("page timeout must be > 0")
	}
	if c.Scraper.MaxListings <= 0 {
		return fmt.Errorf("max listings must be > 0")
	}
	return nil
}
