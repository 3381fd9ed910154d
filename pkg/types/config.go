// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "entitylink/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds the backoff attempts on HTTP 429 when the client
	// uploads to a remote entitylink service. 0 sends each request once.
	// The linking stages never retry.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// ServerConfig holds settings for the HTTP service.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`

	// MaxUploadBytes caps the size of a multipart upload (default 32 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes" validate:"gte=0"`
}

// WikidataBackend selects how the Wikidata linking stage resolves mentions.
type WikidataBackend string

const (
	// WikidataKB resolves mentions in-process against a local SQLite knowledge base.
	WikidataKB WikidataBackend = "kb"
	// WikidataOpenTapioca delegates linking to an OpenTapioca annotate endpoint.
	WikidataOpenTapioca WikidataBackend = "opentapioca"
)

// WikidataConfig holds settings for the Wikidata linking stage.
type WikidataConfig struct {
	Backend WikidataBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=kb opentapioca"`

	// KBPath is the SQLite knowledge base file used by the kb backend.
	KBPath string `json:"kb_path" yaml:"kb_path" mapstructure:"kb_path"`

	// URLTemplate turns an entity id (e.g. "Q23548") into a link. It must
	// contain exactly one %s verb.
	URLTemplate string `json:"url_template" yaml:"url_template" mapstructure:"url_template" validate:"required,contains=%s"`

	// MaxDepth bounds the superclass walk (default 1: direct P31/P279 targets).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth" validate:"gte=0"`

	// OpenTapiocaEndpoint is the annotate URL used by the opentapioca backend.
	OpenTapiocaEndpoint string `json:"opentapioca_endpoint" yaml:"opentapioca_endpoint" mapstructure:"opentapioca_endpoint" validate:"omitempty,url"`
}

// DBpediaConfig holds settings for the DBpedia Spotlight linking stage.
type DBpediaConfig struct {
	// Endpoint is the Spotlight base address (e.g. "https://api.dbpedia-spotlight.org/en").
	// It has no default: DBpedia linking fails while it is unset.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// Confidence is the disambiguation threshold sent to Spotlight; 0 omits it.
	Confidence float64 `json:"confidence" yaml:"confidence" mapstructure:"confidence" validate:"gte=0,lte=1"`

	// Support is the minimum resource support sent to Spotlight; 0 omits it.
	Support int `json:"support" yaml:"support" mapstructure:"support" validate:"gte=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings for the service and CLI.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Wikidata WikidataConfig `json:"wikidata" yaml:"wikidata" mapstructure:"wikidata"`
	DBpedia  DBpediaConfig  `json:"dbpedia" yaml:"dbpedia" mapstructure:"dbpedia"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// Validate checks field constraints on the whole configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateEndpoint reports whether raw is a usable absolute URL.
func ValidateEndpoint(raw string) error {
	return validate.Var(raw, "required,url")
}
