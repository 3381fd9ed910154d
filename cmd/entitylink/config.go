// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/entitylink/internal/server"
	"github.com/pdiddy/entitylink/internal/wikidata"
	"github.com/pdiddy/entitylink/pkg/types"
)

// setDefaults registers every config key so AutomaticEnv can override
// keys absent from the config file.
func setDefaults() {
	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.max_upload_bytes", server.DefaultMaxUploadBytes)

	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("http.user_agent", "entitylink/"+version)
	viper.SetDefault("http.max_retries", 0)

	viper.SetDefault("wikidata.backend", string(types.WikidataKB))
	viper.SetDefault("wikidata.kb_path", "data/wikidata.db")
	viper.SetDefault("wikidata.url_template", wikidata.DefaultURLTemplate)
	viper.SetDefault("wikidata.max_depth", 1)
	viper.SetDefault("wikidata.opentapioca_endpoint", "")

	viper.SetDefault("dbpedia.endpoint", "")
	viper.SetDefault("dbpedia.confidence", 0.0)
	viper.SetDefault("dbpedia.support", 0)

	viper.SetDefault("log.level", "info")
}

// bindEnv maps ENTITYLINK_<SECTION>_<KEY> variables onto config keys,
// e.g. ENTITYLINK_DBPEDIA_ENDPOINT onto dbpedia.endpoint.
func bindEnv() {
	viper.SetEnvPrefix("ENTITYLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func httpClient(cfg types.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}
