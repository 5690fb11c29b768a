package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"smallsh/internal/parser"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const ConfigurationName = ".smallshrc.yaml"

type Configuration struct {
	Prompt        string `json:"prompt"`
	MaxLineLength int    `json:"max_line_length" validate:"gte=1,lte=1048576"`
	MaxArgs       int    `json:"max_args" validate:"gte=1,lte=65536"`

	DrainBackground  bool `json:"drain_background"`
	BackgroundNullIO bool `json:"background_null_io"`

	EventLog string `json:"event_log"`

	Readline    bool   `json:"readline"`
	HistoryFile string `json:"history_file"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) Limits() parser.Limits {
	return parser.Limits{MaxLine: c.MaxLineLength, MaxArgs: c.MaxArgs}
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog(fsys afero.Fs) (afero.File, error) {
	return fsys.OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Load reads the file at path over the defaults.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	out := Default()
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return out, nil
}

// LoadHome loads ConfigurationName from the home directory, falling back to
// the defaults when it does not exist or home is unknown.
func LoadHome(fsys afero.Fs, home string) (*Configuration, error) {
	if home == "" {
		return Default(), nil
	}
	out, err := Load(fsys, filepath.Join(home, ConfigurationName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return out, err
}
