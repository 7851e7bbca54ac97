package relsql

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/oarkflow/relsql/paramstyle"
)

// Config describes how to reach and configure one database, extending the
// teacher's connection Config with the fields this toolkit's template and
// identifier layers need: which placeholder dialect the driver expects,
// where to look for ".sql"/".sql.tmpl" files, and which character quotes
// identifiers.
type Config struct {
	Name        string         `json:"name"`
	Key         string         `json:"key"`
	Host        string         `json:"host"`
	Port        int            `json:"port"`
	Driver      string         `json:"driver"`
	Username    string         `json:"username"`
	Password    string         `json:"password"`
	Database    string         `json:"database"`
	Params      map[string]any `json:"params"`
	MaxLifetime int64          `json:"max_lifetime"`
	MaxIdleTime int64          `json:"max_idle_time"`
	MaxOpenCons int            `json:"max_open_cons"`
	MaxIdleCons int            `json:"max_idle_cons"`

	ParamStyle    paramstyle.Style `json:"param_style"`
	TemplateRoots []string         `json:"template_roots"`
	QuoteChar     byte             `json:"quote_char"`
}

var keysToRemove = []string{
	"name", "key", "host", "port", "driver", "username", "password", "database", "params",
	"max_lifetime", "max_idle_time", "max_open_cons", "max_idle_cons",
	"param_style", "template_roots", "quote_char",
}

// DecodeConfig parses a JSON document into a Config, stashing any unknown
// top-level key under Params so driver-specific DSN options survive
// round-tripping without a field for each one.
func DecodeConfig(data []byte) (cfg Config, err error) {
	if err = json.Unmarshal(data, &cfg); err != nil {
		return
	}
	var mapData map[string]any
	if err = json.Unmarshal(data, &mapData); err != nil {
		return
	}
	cfg.Params = make(map[string]any)
	for key, val := range mapData {
		if !slices.Contains(keysToRemove, key) {
			cfg.Params[key] = val
		}
	}
	cfg.applyDefaults()
	return
}

func (config *Config) applyDefaults() {
	if config.ParamStyle == "" {
		switch config.Driver {
		case "postgres", "psql", "postgresql":
			config.ParamStyle = paramstyle.Dollar
		case "sql-server", "sqlserver", "mssql", "ms-sql":
			config.ParamStyle = paramstyle.Numeric
		default:
			config.ParamStyle = paramstyle.Qmark
		}
	}
	if config.QuoteChar == 0 {
		switch config.Driver {
		case "mysql", "mariadb":
			config.QuoteChar = '`'
		case "sql-server", "sqlserver", "mssql", "ms-sql":
			config.QuoteChar = '['
		default:
			config.QuoteChar = '"'
		}
	}
}

// ToString builds a driver-native DSN from the structured fields, per
// driver. Unrecognized drivers return an empty string.
func (config Config) ToString() string {
	switch config.Driver {
	case "mysql", "mariadb":
		if config.Host == "" {
			config.Host = "0.0.0.0"
		}
		if config.Port == 0 {
			config.Port = 3306
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", config.Username, config.Password, config.Host, config.Port, config.Database)
		return dsn + optString(config.Params, "?", "&", "=")
	case "postgres", "psql", "postgresql":
		if config.Host == "" {
			config.Host = "0.0.0.0"
		}
		if config.Port == 0 {
			config.Port = 5432
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d", config.Host, config.Username, config.Password, config.Database, config.Port)
		return dsn + optString(config.Params, " ", " ", "=")
	case "sql-server", "sqlserver", "mssql", "ms-sql":
		if config.Host == "" {
			config.Host = "0.0.0.0"
		}
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s", config.Username, config.Password, config.Host, config.Port, config.Database)
		return dsn + optString(config.Params, "&", "&", "=")
	case "sqlite", "sqlite3":
		return config.Database
	}
	return ""
}

func optString(params map[string]any, lead, sep, eq string) string {
	if len(params) == 0 {
		return ""
	}
	var opts []string
	for k, v := range params {
		opts = append(opts, k+eq+fmt.Sprint(v))
	}
	return lead + strings.Join(opts, sep)
}
