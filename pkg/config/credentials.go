package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// CredentialSource names which strategy produced the store credentials.
type CredentialSource string

const (
	SourceJSONBlob       CredentialSource = "json_blob"
	SourceDiscreteFields CredentialSource = "discrete_fields"
	SourceDefault        CredentialSource = "default"
)

// ErrNoCredentials is returned when none of the credential strategies is configured.
var ErrNoCredentials = errors.New("no store credentials configured")

// Credentials 解析后的存储凭据
type Credentials struct {
	Source CredentialSource
	// DSN is empty for SourceDefault; pgx then falls back to the PG* environment.
	DSN string
}

type credentialBlob struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// ResolveCredentials picks exactly one credential strategy, in order:
// JSON blob, discrete fields, ambient default credentials.
func ResolveCredentials(cfg StoreConfig) (Credentials, error) {
	if cfg.CredentialsJSON != "" {
		var blob credentialBlob
		if err := json.Unmarshal([]byte(cfg.CredentialsJSON), &blob); err != nil {
			return Credentials{}, fmt.Errorf("parse credentials json: %w", err)
		}
		if blob.Host == "" || blob.User == "" || blob.Database == "" {
			return Credentials{}, errors.New("credentials json requires host, user and database")
		}
		return Credentials{
			Source: SourceJSONBlob,
			DSN:    buildDSN(blob.User, blob.Password, blob.Host, blob.Port, blob.Database, blob.SSLMode),
		}, nil
	}

	if cfg.DB.Host != "" && cfg.DB.User != "" && cfg.DB.Name != "" {
		return Credentials{
			Source: SourceDiscreteFields,
			DSN:    buildDSN(cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, cfg.DB.SSLMode),
		}, nil
	}

	if cfg.UseDefaultCredentials {
		return Credentials{Source: SourceDefault}, nil
	}

	return Credentials{}, ErrNoCredentials
}

func buildDSN(user, password, host string, port int, name, sslMode string) string {
	if port == 0 {
		port = 5432
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + strconv.Itoa(port),
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}
