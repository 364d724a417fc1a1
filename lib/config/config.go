package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"

	derror "github.com/hanfei1991/jobsweep/pkg/errors"
	"github.com/hanfei1991/jobsweep/pkg/logutil"
)

// Config is the configuration of a jobsweep process.
type Config struct {
	Poll    PollConfig     `toml:"poll" yaml:"poll" json:"poll"`
	Backend BackendConfig  `toml:"backend" yaml:"backend" json:"backend"`
	Log     logutil.Config `toml:"log" yaml:"log" json:"log"`
}

// DefaultConfig returns a Config with every section set to its defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Poll:    DefaultPollConfig(),
		Backend: DefaultBackendConfig(),
	}
	cfg.Log.Adjust()
	return cfg
}

// Adjust validates every section and fills in defaults.
func (c *Config) Adjust() {
	c.Poll = c.Poll.Adjust()
	c.Backend = c.Backend.Adjust()
	c.Log.Adjust()
}

// DecodeFile loads the config file at path over c. The format is chosen
// by extension: .toml, .yaml or .yml. Unknown keys are rejected.
func (c *Config) DecodeFile(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		metaData, err := toml.DecodeFile(path, c)
		if err != nil {
			return derror.ErrDecodeConfigFile.Wrap(err).GenWithStackByArgs(path)
		}
		if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
			items := make([]string, 0, len(undecoded))
			for _, item := range undecoded {
				items = append(items, item.String())
			}
			return derror.ErrConfigUnknownItem.GenWithStackByArgs(strings.Join(items, ","))
		}
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.Trace(err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return derror.ErrDecodeConfigFile.Wrap(err).GenWithStackByArgs(path)
		}
	default:
		return derror.ErrConfigUnsupportedFile.GenWithStackByArgs(ext)
	}

	c.Adjust()
	return nil
}

// Load returns the defaults overridden by the file at path.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.DecodeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}
