package common

import "fmt"

// DataError reports an unusable dataset source: a file that cannot be read or
// one from which no valid rows survive filtering. Fatal to process startup.
type DataError struct {
	Path string
	Err  error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("dataset %s: %v", e.Path, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports hyperparameters a run cannot start with.
// Fatal to a single run only: the worker returns to idle and waits for a
// corrected request.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

// ChannelError reports a missing or disconnected channel peer.
type ChannelError struct {
	Op string
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: peer disconnected", e.Op)
}
