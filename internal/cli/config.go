package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydepgraph/pkg/buildinfo"
	pderrors "github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
)

// configFileName is looked up inside configDir when --config is not given.
const configFileName = "config.toml"

// Config is the optional TOML configuration file.
//
//	registry_url = "https://pypi.org/pypi"
//	timeout      = "15s"
//	library      = "requests"
//	number       = 5
//	user_agent   = "my-tool/1.0"
//
//	[server]
//	addr = ":9000"
//
// Command-line flags override every key.
type Config struct {
	RegistryURL string       `toml:"registry_url"`
	Timeout     duration     `toml:"timeout"`
	Library     string       `toml:"library"`
	Number      *int         `toml:"number"`
	UserAgent   string       `toml:"user_agent"`
	Server      ServerConfig `toml:"server"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes Go duration strings such as "1m30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() Config {
	return Config{
		RegistryURL: pypi.DefaultBaseURL,
		UserAgent:   appName + "/" + buildinfo.Version,
		Server:      ServerConfig{Addr: defaultAddr},
	}
}

// readConfig decodes the file at path over the defaults. A missing file is
// only an error when the user named it explicitly.
func readConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, pderrors.Wrap(pderrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, pderrors.Wrap(pderrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, pderrors.New(pderrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// validate checks the merged configuration.
func (cfg Config) validate() error {
	if err := pderrors.ValidateURL(cfg.RegistryURL); err != nil {
		return err
	}
	if cfg.Timeout.Duration < 0 {
		return pderrors.New(pderrors.ErrCodeInvalidConfig, "timeout must not be negative, got %s", cfg.Timeout)
	}
	if cfg.Number != nil {
		if err := pderrors.ValidateDepth(*cfg.Number); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig reads the config file and applies the persistent flags on top.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			c.Logger.Debug("no config directory", "error", err)
			c.config = defaultConfig()
			return c.applyFlags(cmd)
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg, err := readConfig(path, explicit)
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("config loaded", "path", path, "registry", cfg.RegistryURL)
	return c.applyFlags(cmd)
}

func (c *CLI) applyFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("registry") {
		c.config.RegistryURL = c.registry
	}
	if cmd.Flags().Changed("timeout") {
		c.config.Timeout.Duration = c.timeout
	}
	return c.config.validate()
}
