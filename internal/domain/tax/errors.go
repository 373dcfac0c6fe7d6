package tax

import (
	"errors"
	"fmt"
)

var (
	ErrTableNotFound   = errors.New("tax slab table not found")
	ErrNoActiveTable   = errors.New("no tax slab table is active for this date")
	ErrInvalidConfig   = errors.New("invalid tax slab configuration")
	ErrTableNameExists = errors.New("tax slab table name already exists")
)

// ConfigError describes why a slab table was rejected.
type ConfigError struct {
	TableID string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.TableID == "" {
		return fmt.Sprintf("invalid tax configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid tax configuration for table %s: %s", e.TableID, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
