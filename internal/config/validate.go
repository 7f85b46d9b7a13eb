package config

import (
	"errors"
	"fmt"
	"strings"

	"submerge/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMkvmerge(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateMkvmerge() error {
	if strings.TrimSpace(c.Mkvmerge.Binary) == "" {
		return errors.New("mkvmerge.binary must be set (or export SUBMERGE_MKVMERGE)")
	}
	if c.Mkvmerge.TimeoutSeconds < 0 {
		return errors.New("mkvmerge.timeout_seconds must be >= 0")
	}
	if strings.ContainsAny(c.Mkvmerge.OutputSuffix, `/\`) {
		return fmt.Errorf("mkvmerge.output_suffix %q must not contain path separators", c.Mkvmerge.OutputSuffix)
	}
	if strings.ContainsAny(c.Mkvmerge.OutputExtension, `/\.`) {
		return fmt.Errorf("mkvmerge.output_extension %q must be a bare extension", c.Mkvmerge.OutputExtension)
	}
	return nil
}

func (c *Config) validateMerge() error {
	if !language.IsSupported(c.Merge.DefaultLanguage) {
		return fmt.Errorf("merge.default_language %q is not supported (run 'submerge languages')", c.Merge.DefaultLanguage)
	}
	if c.Merge.ResetDelaySeconds < 0 {
		return errors.New("merge.reset_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
