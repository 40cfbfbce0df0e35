package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/xmlpo/pkg/logger"
)

var (
	errConfig          = errors.New("xmlpo: invalid configuration")
	errMergeOneFile    = errors.New("xmlpo: translations can be merged into one document at a time")
	errReuseInMerge    = errors.New("xmlpo: reuse applies to extraction only")
	errNoInput         = errors.New("xmlpo: no input documents")
	errLanguageMissing = errors.New("xmlpo: a translation memory needs a target language")
)

// config holds every setting of a run. Values come from the optional YAML
// file first; flags given on the command line override them.
type config struct {
	Format            string              `yaml:"format"`
	Taxonomy          string              `yaml:"taxonomy"`
	AutomaticTags     bool                `yaml:"automatic_tags"`
	KeepEntities      bool                `yaml:"keep_entities"`
	ExpandAllEntities bool                `yaml:"expand_all_entities"`
	MarkUntranslated  bool                `yaml:"mark_untranslated"`
	Language          string              `yaml:"language"`
	Project           string              `yaml:"project"`
	Output            string              `yaml:"output" validate:"required"`
	PO                string              `yaml:"po" validate:"excluded_with=MO"`
	MO                string              `yaml:"mo"`
	SaveMO            string              `yaml:"save_mo" validate:"omitempty,excluded_without=PO"`
	Reuse             string              `yaml:"reuse"`
	LogLevel          string              `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Concurrency       int                 `yaml:"concurrency" validate:"gte=0,lte=64"`
	Memory            memoryConfig        `yaml:"memory"`
	Sanitize          sanitizeConfig      `yaml:"sanitize"`
	Sentry            logger.SentryConfig `yaml:"sentry"`
}

type memoryConfig struct {
	SQLite string `yaml:"sqlite" validate:"excluded_with=Redis"`
	Redis  string `yaml:"redis" validate:"omitempty,url"`
	Prefix string `yaml:"prefix"`
	// Import stores the translations of the catalog in the memory.
	Import bool `yaml:"import"`
}

type sanitizeConfig struct {
	Enabled bool     `yaml:"enabled"`
	Inline  []string `yaml:"inline" validate:"dive,required"`
}

func defaultConfig() config {
	return config{
		Format:   "docbook",
		Output:   "-",
		LogLevel: "warn",
	}
}

// loadConfig decodes the YAML file at path over the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Join(errConfig, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Join(errConfig, fmt.Errorf("%s: %w", path, err))
	}
	return cfg, nil
}

func (c config) validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Join(errConfig, err)
	}
	return nil
}

func (c config) merging() bool {
	return c.PO != "" || c.MO != ""
}
