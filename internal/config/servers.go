package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrServerNotFound = errors.New("server not found")

// AddServer appends s with a fresh ID and returns the stored copy. Names
// must be unique, ignoring case.
func (c *Config) AddServer(s Server) (Server, error) {
	if err := c.checkServer(s, ""); err != nil {
		return Server{}, err
	}
	s.ID = uuid.NewString()
	s.Name = strings.TrimSpace(s.Name)
	c.Servers = append(c.Servers, s)
	return s, nil
}

// EditServer replaces the server with the same ID.
func (c *Config) EditServer(s Server) error {
	i := c.serverIndex(s.ID)
	if i < 0 {
		return ErrServerNotFound
	}
	if err := c.checkServer(s, s.ID); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(s.Name)
	c.Servers[i] = s
	return nil
}

func (c *Config) DeleteServer(id string) error {
	i := c.serverIndex(id)
	if i < 0 {
		return ErrServerNotFound
	}
	c.Servers = append(c.Servers[:i], c.Servers[i+1:]...)
	return nil
}

// ServerByName finds a saved server by name, ignoring case.
func (c Config) ServerByName(name string) (Server, bool) {
	name = strings.TrimSpace(name)
	for _, s := range c.Servers {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Server{}, false
}

func (c Config) serverIndex(id string) int {
	for i, s := range c.Servers {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c Config) checkServer(s Server, selfID string) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return errors.New("server name is required")
	}
	if strings.TrimSpace(s.DB.Host) == "" {
		return errors.New("server host is required")
	}
	if s.DB.Driver != "" && !IsKnownDriver(s.DB.Driver) {
		return fmt.Errorf("unsupported driver: %q", s.DB.Driver)
	}
	if other, ok := c.ServerByName(name); ok && other.ID != selfID {
		return fmt.Errorf("server %q already exists", name)
	}
	return nil
}
