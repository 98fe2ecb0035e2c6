package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/discussions-app/core/internal/flagx"
	"github.com/discussions-app/core/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so JSON can specify intervals either as
// strings like "90s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr   string         `json:"server_endpoint_addr"`
	RelayEndpointAddr    string         `json:"relay_endpoint_addr"`
	CacheDSN             string         `json:"cache_dsn"`
	AuthorizationTimeout timex.Duration `json:"authorization_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.RelayEndpointAddr = jc.RelayEndpointAddr
	cfg.CacheDSN = jc.CacheDSN
	cfg.AuthorizationTimeout = time.Duration(jc.AuthorizationTimeout.Duration)
}
