package project

import "fmt"

// ConfigError reports invalid or missing configuration. It aborts setup;
// nothing is checked with a broken configuration.
type ConfigError struct {
	Path  string // configuration file, empty for flags and defaults
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(path, field string, err error) *ConfigError {
	return &ConfigError{Path: path, Field: field, Err: err}
}
