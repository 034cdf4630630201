package main

import (
	"fmt"
	"os"

	"github.com/rogpeppe/rjson"
)

const (
	defaultDataFile = "blog-posts.json"

	backendFile     = "file"
	backendBolt     = "bolt"
	backendBadger   = "badger"
	backendPostgres = "postgres"
)

type mirrorConfig struct {
	Bucket        string  `json:"bucket"`
	Region        string  `json:"region"`
	Profile       string  `json:"profile"`
	Prefix        string  `json:"prefix"`
	PutsPerSecond float64 `json:"puts_per_second"`
}

type config struct {
	Address string `json:"address"`
	Debug   bool   `json:"debug"`
	Gops    bool   `json:"gops"`

	Backend string `json:"backend"`

	// The image is stored under this name; for the file backend it is the
	// path of the file.
	DataFile    string `json:"data_file"`
	BoltFile    string `json:"bolt_file"`
	BadgerDir   string `json:"badger_dir"`
	PostgresDSN string `json:"postgres_dsn"`

	Mirror *mirrorConfig `json:"mirror"`
}

func defaultConfig() *config {
	return &config{
		Address:  ":9999",
		Backend:  backendFile,
		DataFile: defaultDataFile,
	}
}

// loadConfig reads the configuration at pathname over the defaults. A missing
// file is not an error unless required is set.
func loadConfig(pathname string, required bool) (*config, error) {
	c := defaultConfig()
	f, err := os.Open(pathname)
	if os.IsNotExist(err) && !required {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := rjson.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", pathname, err)
	}
	return c, c.validate()
}

func (c *config) validate() error {
	switch c.Backend {
	case backendFile, backendBolt, backendBadger, backendPostgres:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if c.Backend == backendBolt && c.BoltFile == "" {
		return fmt.Errorf("backend %q requires bolt_file", c.Backend)
	}
	if c.Backend == backendBadger && c.BadgerDir == "" {
		return fmt.Errorf("backend %q requires badger_dir", c.Backend)
	}
	if c.Backend == backendPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("backend %q requires postgres_dsn", c.Backend)
	}
	if c.Mirror != nil && c.Mirror.Bucket == "" {
		return fmt.Errorf("mirror requires bucket")
	}
	return nil
}
