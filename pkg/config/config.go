// Package config resolves the conductor target from a YAML credentials file
// and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/apbss/pkg/aos"
	"github.com/newtron-network/apbss/pkg/util"
)

// DefaultCredentialsFile is read when no other file is named.
const DefaultCredentialsFile = "credentials.yaml"

// Credentials is the on-disk credentials file.
type Credentials struct {
	AOSDevice   string `yaml:"aosDevice"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	HTTPSVerify bool   `yaml:"httpsVerify"`
}

// Overrides holds values given on the command line. Empty strings and a nil
// Verify mean "not given".
type Overrides struct {
	Target     string
	Username   string
	Password   string
	Verify     *bool
	Port       string
	APIVersion string
}

// Config is the merged configuration for one run.
type Config struct {
	Credentials
	Port       string
	APIVersion string
}

// LoadCredentials reads the credentials file at path. A missing file is not
// an error: it yields empty credentials and a warning.
func LoadCredentials(path string) (*Credentials, error) {
	c := &Credentials{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			util.Warnf("Credentials file %s not found, ignoring", path)
			return c, nil
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}

	util.Debugf("Loaded credentials for %s from %s", c.AOSDevice, path)
	return c, nil
}

// New merges file credentials with overrides. Overrides win whenever they
// are set.
func New(creds *Credentials, o Overrides) *Config {
	c := &Config{
		Port:       aos.DefaultPort,
		APIVersion: aos.DefaultAPIVersion,
	}
	if creds != nil {
		c.Credentials = *creds
	}

	if o.Target != "" {
		c.AOSDevice = o.Target
	}
	if o.Username != "" {
		c.Username = o.Username
	}
	if o.Password != "" {
		c.Password = o.Password
	}
	if o.Verify != nil {
		c.HTTPSVerify = *o.Verify
	}
	if o.Port != "" {
		c.Port = o.Port
	}
	if o.APIVersion != "" {
		c.APIVersion = o.APIVersion
	}
	return c
}

// Load reads path and applies o on top of it.
func Load(path string, o Overrides) (*Config, error) {
	creds, err := LoadCredentials(path)
	if err != nil {
		return nil, err
	}
	return New(creds, o), nil
}

// Resolve validates c and returns the conductor target. Every missing
// field is reported in a single *util.ValidationError.
func (c *Config) Resolve() (aos.Target, error) {
	v := &util.ValidationBuilder{}
	v.Add(strings.TrimSpace(c.AOSDevice) != "", "target host is required (aosDevice or --target)")
	v.Add(c.Username != "", "username is required (username or --username)")
	v.Add(c.Password != "", "password is required (password or --password)")
	v.Add(c.Port != "", "port must not be empty")
	if n, err := strconv.Atoi(c.Port); c.Port != "" && (err != nil || n < 1 || n > 65535) {
		v.AddErrorf("port %q is not a TCP port number", c.Port)
	}
	v.Add(c.APIVersion != "", "API version must not be empty")
	if err := v.Build(); err != nil {
		return aos.Target{}, err
	}

	return aos.Target{
		Host:       strings.TrimSpace(c.AOSDevice),
		Port:       c.Port,
		APIVersion: c.APIVersion,
		Username:   c.Username,
		Password:   c.Password,
		VerifyTLS:  c.HTTPSVerify,
	}, nil
}

// PromptPassword fills in a missing password by reading it without echo
// from the terminal on fd. It does nothing if a password is already set or
// fd is not a terminal.
func (c *Config) PromptPassword(fd int, out io.Writer) error {
	if c.Password != "" || !term.IsTerminal(fd) {
		return nil
	}
	fmt.Fprintf(out, "Password for %s@%s: ", c.Username, c.AOSDevice)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	c.Password = string(pw)
	return nil
}
