// Package config exposes typed access to the service configuration.
package config

import (
	"io"
	"time"
)

// Config retrieves configuration values by dotted key (for example
// "mail.smtp.host"). Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer and interprets it as seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer and interprets it as minutes.
	GetMinute(key string) time.Duration

	// GetBinary decodes a base64 encoded value.
	GetBinary(key string) []byte
	// GetArray splits a "<a>,<b>,..." value, dropping blanks and duplicates.
	GetArray(key string) []string
	// GetMap parses a "<k1>:<v1>,<k2>:<v2>" value.
	GetMap(key string) map[string]string
}
