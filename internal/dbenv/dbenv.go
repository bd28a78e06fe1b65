// Package dbenv resolves which storage backend a run writes to, and how to
// reach it, from a prioritized set of configuration sources:
//
//  1. DATABASE_URL: a single connection URL. When present it is parsed fully
//     and used exclusively; every lower-priority variable is ignored.
//  2. Discrete DB_DRIVER / DB_HOST / DB_PORT / DB_USER / DB_PASSWORD /
//     DB_NAME variables. The host alone is enough; the rest default to
//     documented constants.
//  3. Nothing set: a hardcoded local default (MySQL on localhost).
//
// Resolution is a pure function of the injected getenv. It is performed once
// at the top of a run and the resulting BackendConfig is threaded through by
// parameter; no component reads the environment ambiently after that.
package dbenv

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Source identifies which configuration source produced a BackendConfig.
type Source string

const (
	SourceManagedCloud Source = "managed-cloud"
	SourceExplicitEnv  Source = "explicit-env"
	SourceLocalDefault Source = "local-default"
)

// Documented defaults for the discrete-variable and local-default sources.
const (
	DefaultDriver   = "mysql"
	DefaultHost     = "localhost"
	DefaultUser     = "root"
	DefaultDatabase = "haigui_database"
)

// BackendConfig is the resolved storage backend for one run. It is immutable
// for the run's duration.
type BackendConfig struct {
	Source Source `json:"source"`

	// Driver selects the storage backend kind: mysql, postgres, mssql, or
	// sqlite.
	Driver string `json:"driver"`

	// DSN is the driver-ready connection string.
	DSN string `json:"-"`

	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user,omitempty"`
	Password string `json:"-"`
	Database string `json:"database,omitempty"`
}

// BackendUnresolvedError reports configuration that is present but internally
// inconsistent, never merely absent; absence falls through to defaults.
type BackendUnresolvedError struct {
	Reason string
}

func (e *BackendUnresolvedError) Error() string {
	return "backend unresolved: " + e.Reason
}

// ResolveEnv resolves against the real process environment.
func ResolveEnv() (BackendConfig, error) { return Resolve(os.Getenv) }

// Resolve determines the backend from the supplied getenv. Tests pass a
// map-backed func to stay hermetic.
func Resolve(getenv func(string) string) (BackendConfig, error) {
	if raw := strings.TrimSpace(getenv("DATABASE_URL")); raw != "" {
		cfg, err := parseURL(raw)
		if err != nil {
			return BackendConfig{}, err
		}
		cfg.Source = SourceManagedCloud
		return cfg, nil
	}

	discrete := false
	for _, k := range []string{"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		if getenv(k) != "" {
			discrete = true
			break
		}
	}
	if discrete {
		return resolveDiscrete(getenv)
	}

	cfg := BackendConfig{
		Source:   SourceLocalDefault,
		Driver:   DefaultDriver,
		Host:     DefaultHost,
		Port:     defaultPort(DefaultDriver),
		User:     DefaultUser,
		Database: DefaultDatabase,
	}
	cfg.DSN = buildDSN(cfg)
	return cfg, nil
}

func resolveDiscrete(getenv func(string) string) (BackendConfig, error) {
	driver, err := normalizeDriver(getenv("DB_DRIVER"))
	if err != nil {
		return BackendConfig{}, err
	}

	// A password with no user is the one partial configuration we refuse to
	// paper over with a default identity.
	if getenv("DB_PASSWORD") != "" && getenv("DB_USER") == "" {
		return BackendConfig{}, &BackendUnresolvedError{Reason: "DB_PASSWORD is set but DB_USER is not"}
	}

	port := defaultPort(driver)
	if raw := getenv("DB_PORT"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p <= 0 || p > 65535 {
			return BackendConfig{}, &BackendUnresolvedError{Reason: fmt.Sprintf("DB_PORT %q is not a valid port", raw)}
		}
		port = p
	}

	cfg := BackendConfig{
		Source:   SourceExplicitEnv,
		Driver:   driver,
		Host:     envOr(getenv, "DB_HOST", DefaultHost),
		Port:     port,
		User:     envOr(getenv, "DB_USER", DefaultUser),
		Password: getenv("DB_PASSWORD"),
		Database: envOr(getenv, "DB_NAME", DefaultDatabase),
	}
	cfg.DSN = buildDSN(cfg)
	return cfg, nil
}

func parseURL(raw string) (BackendConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BackendConfig{}, &BackendUnresolvedError{Reason: fmt.Sprintf("DATABASE_URL does not parse: %v", err)}
	}

	driver, err := normalizeDriver(u.Scheme)
	if err != nil {
		return BackendConfig{}, err
	}

	if driver == "sqlite" {
		path := u.Opaque
		if path == "" {
			path = u.Path
		}
		if path == "" {
			return BackendConfig{}, &BackendUnresolvedError{Reason: "sqlite DATABASE_URL carries no path"}
		}
		return BackendConfig{Driver: driver, DSN: path, Database: path}, nil
	}

	cfg := BackendConfig{
		Driver:   driver,
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if cfg.Host == "" {
		return BackendConfig{}, &BackendUnresolvedError{Reason: "DATABASE_URL carries no host"}
	}
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}
	cfg.Port = defaultPort(driver)
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return BackendConfig{}, &BackendUnresolvedError{Reason: fmt.Sprintf("DATABASE_URL port %q is not numeric", p)}
		}
		cfg.Port = n
	}

	switch driver {
	case "postgres":
		// lib/pq accepts both postgres:// and postgresql:// URLs directly;
		// keep the operator's query parameters (sslmode, etc.) intact.
		cfg.DSN = raw
	case "mssql":
		// go-mssqldb treats only the sqlserver:// prefix as a URL; an
		// mssql:// string falls into ADO-style parsing and loses the host.
		if strings.EqualFold(u.Scheme, "sqlserver") {
			cfg.DSN = raw
		} else {
			cfg.DSN = buildDSN(cfg)
		}
	default:
		cfg.DSN = buildDSN(cfg)
	}
	return cfg, nil
}

// buildDSN renders the driver-specific connection string from discrete parts.
func buildDSN(cfg BackendConfig) string {
	switch cfg.Driver {
	case "mysql":
		// go-sql-driver format; parseTime so DATE/TIMESTAMP scan as time.Time,
		// utf8mb4 matching the destination tables.
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	case "postgres":
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:   "/" + cfg.Database,
		}
		return u.String()
	case "mssql":
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			RawQuery: "database=" + url.QueryEscape(cfg.Database),
		}
		return u.String()
	case "sqlite":
		return cfg.Database
	}
	return ""
}

func normalizeDriver(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mysql":
		return "mysql", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mssql", "sqlserver":
		return "mssql", nil
	case "sqlite", "sqlite3", "file":
		return "sqlite", nil
	default:
		return "", &BackendUnresolvedError{Reason: fmt.Sprintf("unknown driver %q", s)}
	}
}

func defaultPort(driver string) int {
	switch driver {
	case "postgres":
		return 5432
	case "mssql":
		return 1433
	case "sqlite":
		return 0
	default:
		return 3306
	}
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// Redacted returns a loggable description of the backend without credentials.
func (c BackendConfig) Redacted() string {
	if c.Driver == "sqlite" {
		return fmt.Sprintf("sqlite %s (%s)", c.Database, c.Source)
	}
	return fmt.Sprintf("%s %s@%s:%d/%s (%s)", c.Driver, c.User, c.Host, c.Port, c.Database, c.Source)
}
