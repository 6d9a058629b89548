package domain

import "fmt"

type (
	// ConfigError reports invalid deployment input: thresholds, signers,
	// token specs or fees.
	ConfigError struct {
		Field string
		Err   error
	}

	// EncodingError reports metadata that could not be serialized.
	EncodingError struct {
		Subject string
		Err     error
	}

	// OriginationError reports a contract creation rejected by the chain.
	OriginationError struct {
		Role Role
		Err  error
	}

	// InvocationError reports an entrypoint call rejected by the chain.
	InvocationError struct {
		Contract   Address
		Entrypoint string
		Err        error
	}
)

// NewConfigError wraps a formatted message into a ConfigError for field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to encode %s: %v", e.Subject, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *OriginationError) Error() string {
	return fmt.Sprintf("origination of %s failed: %v", e.Role, e.Err)
}

func (e *OriginationError) Unwrap() error { return e.Err }

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation of %s on %s failed: %v", e.Entrypoint, e.Contract, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
