package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cybermorph/morphcli/internal/flagx"
	"github.com/cybermorph/morphcli/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s" or
// as integer nanoseconds. After parsing, set values are copied into the
// runtime Config.
type jsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DataDir        string         `json:"data_dir"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	MaxRPS         float64        `json:"max_rps"`
	WatchInterval  timex.Duration `json:"watch_interval"`
}

// parseJSON overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags via flagx.JSONConfigFlags();
// when neither flag is present no JSON is loaded. Fields absent from the file
// keep their previous values. Panics on read or unmarshal errors.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc jsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.MaxRPS != 0 {
		cfg.MaxRPS = jc.MaxRPS
	}
	if jc.WatchInterval.Duration != 0 {
		cfg.WatchInterval = time.Duration(jc.WatchInterval.Duration)
	}
}
