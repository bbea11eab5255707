package db

import (
	"strconv"
	"strings"

	"sql-bridge/internal/config"
)

// Descriptor builds <scheme>://<host>[:<port>][/<database>]. The port
// segment is present iff cfg.Port is set and the database segment iff
// cfg.Database is set. Credentials are never part of it.
func Descriptor(cfg config.DBConfig) (string, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(dialect.Scheme())
	b.WriteString("://")
	b.WriteString(cfg.Host)
	if cfg.Port != nil {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(*cfg.Port))
	}
	if cfg.Database != nil {
		b.WriteByte('/')
		b.WriteString(*cfg.Database)
	}
	return b.String(), nil
}
