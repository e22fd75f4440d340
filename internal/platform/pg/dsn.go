package pg

import (
	"fmt"
	"net/url"
	"strconv"
)

// DSNConfig holds the parts of a PostgreSQL connection URL.
type DSNConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	ApplicationName string
	ConnectTimeout  int // seconds

	ExtraParams map[string]string
}

// BuildDSN renders config as a postgres:// URL. Host, port and sslmode
// default to localhost, 5432 and disable.
func BuildDSN(config DSNConfig) string {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 5432
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   config.Host + ":" + strconv.Itoa(config.Port),
	}
	if config.User != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.User, config.Password)
		} else {
			u.User = url.User(config.User)
		}
	}
	if config.Database != "" {
		u.Path = "/" + config.Database
	}

	params := url.Values{}
	params.Set("sslmode", config.SSLMode)
	if config.ApplicationName != "" {
		params.Set("application_name", config.ApplicationName)
	}
	if config.ConnectTimeout > 0 {
		params.Set("connect_timeout", strconv.Itoa(config.ConnectTimeout))
	}
	for k, v := range config.ExtraParams {
		if k != "" && v != "" {
			params.Set(k, v)
		}
	}
	u.RawQuery = params.Encode()

	return u.String()
}

// ParseDSN splits a postgres:// or postgresql:// URL back into a DSNConfig.
func ParseDSN(dsn string) (DSNConfig, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return DSNConfig{}, fmt.Errorf("invalid dsn: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return DSNConfig{}, fmt.Errorf("invalid dsn scheme %q", u.Scheme)
	}

	config := DSNConfig{Host: u.Hostname(), Port: 5432}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return DSNConfig{}, fmt.Errorf("invalid port %q: %w", p, err)
		}
		config.Port = port
	}
	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}
	if len(u.Path) > 1 {
		config.Database = u.Path[1:]
	}

	for k, vs := range u.Query() {
		if len(vs) == 0 {
			continue
		}
		switch v := vs[0]; k {
		case "sslmode":
			config.SSLMode = v
		case "application_name":
			config.ApplicationName = v
		case "connect_timeout":
			config.ConnectTimeout, _ = strconv.Atoi(v)
		default:
			if config.ExtraParams == nil {
				config.ExtraParams = make(map[string]string)
			}
			config.ExtraParams[k] = v
		}
	}
	return config, nil
}
