package internal

import "fmt"

// BackendError represents errors talking to the query backend
type BackendError struct {
	URL string
	Op  string // "health", "query"
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// HistoryError represents errors accessing the history archive
type HistoryError struct {
	Op  string // "open", "save", "load", "list"
	Err error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history error: %s: %v", e.Op, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// ConfigError represents errors loading the config file
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
