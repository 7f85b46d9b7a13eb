package config

import (
	"fmt"
	"os"
	"strings"

	"submerge/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMkvmerge(); err != nil {
		return err
	}
	c.normalizeMerge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMkvmerge() error {
	if value, ok := os.LookupEnv("SUBMERGE_MKVMERGE"); ok && strings.TrimSpace(value) != "" {
		c.Mkvmerge.Binary = value
	}
	c.Mkvmerge.Binary = strings.TrimSpace(c.Mkvmerge.Binary)
	if c.Mkvmerge.Binary == "" {
		c.Mkvmerge.Binary = defaultMkvmergeBinary
	}
	// Bare names are resolved through PATH at run time; anything that looks
	// like a path is expanded now.
	if strings.ContainsRune(c.Mkvmerge.Binary, '/') || strings.HasPrefix(c.Mkvmerge.Binary, "~") {
		expanded, err := expandPath(c.Mkvmerge.Binary)
		if err != nil {
			return fmt.Errorf("mkvmerge.binary: %w", err)
		}
		c.Mkvmerge.Binary = expanded
	}
	c.Mkvmerge.OutputSuffix = strings.Trim(strings.TrimSpace(c.Mkvmerge.OutputSuffix), ".")
	if c.Mkvmerge.OutputSuffix == "" {
		c.Mkvmerge.OutputSuffix = defaultOutputSuffix
	}
	c.Mkvmerge.OutputExtension = strings.ToLower(strings.Trim(strings.TrimSpace(c.Mkvmerge.OutputExtension), "."))
	if c.Mkvmerge.OutputExtension == "" {
		c.Mkvmerge.OutputExtension = defaultOutputExtension
	}
	if c.Mkvmerge.TimeoutSeconds < 0 {
		c.Mkvmerge.TimeoutSeconds = 0
	}
	return nil
}

func (c *Config) normalizeMerge() {
	if value, ok := os.LookupEnv("SUBMERGE_LANGUAGE"); ok && strings.TrimSpace(value) != "" {
		c.Merge.DefaultLanguage = value
	}
	c.Merge.DefaultLanguage = strings.TrimSpace(c.Merge.DefaultLanguage)
	if c.Merge.DefaultLanguage == "" {
		c.Merge.DefaultLanguage = defaultLanguage
	}
	// Unsupported values are left untouched so Validate can name them.
	if code, ok := language.Normalize(c.Merge.DefaultLanguage); ok {
		c.Merge.DefaultLanguage = code
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
