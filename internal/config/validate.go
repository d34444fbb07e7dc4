package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if len(c.Sources.Wikipedia.Indices) == 0 {
		return errors.New("sources.wikipedia.indices must list at least one index")
	}
	for name, src := range c.Sources.Wikipedia.Indices {
		if src.URL == "" {
			return fmt.Errorf("sources.wikipedia.indices.%s.url is required", name)
		}
		if src.TableIndex < 0 {
			return fmt.Errorf("sources.wikipedia.indices.%s.table_index must be >= 0", name)
		}
		if len(src.Columns) < 2 {
			return fmt.Errorf("sources.wikipedia.indices.%s.columns must map at least two fields", name)
		}
		if len(src.ExpectedRange) != 2 || src.ExpectedRange[0] > src.ExpectedRange[1] {
			return fmt.Errorf("sources.wikipedia.indices.%s.expected_range must be [min, max]", name)
		}
	}

	if c.Sources.Prices.MaxRetries < 0 {
		return errors.New("sources.prices.max_retries must be >= 0")
	}

	if c.Paths.RetentionDays < 1 {
		return errors.New("paths.retention_days must be >= 1")
	}

	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be between 1 and 65535, got %d", c.Dashboard.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
