package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvLogFile  = "MEMSIM_LOG_FILE"
	EnvLogLevel = "MEMSIM_LOG_LEVEL"
	EnvNoColor  = "MEMSIM_NO_COLOR"
	EnvTraceDB  = "MEMSIM_TRACE_DB"
)

// Env holds settings taken from the environment.
type Env struct {
	LogFile  string
	LogLevel slog.Level
	NoColor  bool
	TraceDB  string
}

// LoadEnv loads the given .env files (missing files are skipped; variables
// already set win) and then reads the MEMSIM_* variables.
func LoadEnv(files ...string) (Env, error) {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv reads the MEMSIM_* variables through lookup.
func FromEnv(lookup func(string) (string, bool)) (Env, error) {
	var env Env
	if v, ok := lookup(EnvLogFile); ok {
		env.LogFile = v
	}
	if v, ok := lookup(EnvTraceDB); ok {
		env.TraceDB = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return Env{}, err
		}
		env.LogLevel = lvl
	}
	if v, ok := lookup(EnvNoColor); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Env{}, fmt.Errorf("config: %s: %w", EnvNoColor, err)
		}
		env.NoColor = b
	}
	return env, nil
}

// ParseLevel parses debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return lvl, nil
}
