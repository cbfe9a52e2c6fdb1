package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	if c.Pipeline.QueueCapacity <= 0 {
		return errors.New("pipeline.queue_capacity must be positive")
	}
	if c.Pipeline.DownloadTimeout <= 0 {
		return errors.New("pipeline.download_timeout must be positive (seconds)")
	}
	if c.Pipeline.RenderErrorExcerpt <= 0 {
		return errors.New("pipeline.render_error_excerpt must be positive")
	}
	if c.Pipeline.MixErrorExcerpt <= 0 {
		return errors.New("pipeline.mix_error_excerpt must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "file", "sqlite":
		return nil
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected file or sqlite)", c.Store.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
}
