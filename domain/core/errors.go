package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNoData           = errors.New("no dataset loaded")
	ErrVariableNotFound = errors.New("variable not found")
	ErrGroupCount       = errors.New("grouping variable must have exactly two levels")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrComputation      = errors.New("computation failed")
	ErrTransport        = errors.New("language model request failed")
	ErrInvalidDataset   = errors.New("invalid dataset")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Error codes exposed to result consumers
const (
	CodeNoData           = "NO_DATA"
	CodeVariableNotFound = "VARIABLE_NOT_FOUND"
	CodeGroupCount       = "GROUP_COUNT"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeComputation      = "COMPUTATION_ERROR"
	CodeTransport        = "TRANSPORT_ERROR"
	CodeInvalidDataset   = "INVALID_DATASET"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeUnknown          = "UNKNOWN"
)

// VariableNotFoundError carries the reference exactly as the caller wrote it.
type VariableNotFoundError struct {
	Name string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable %q not found (no matching column)", e.Name)
}

func (e *VariableNotFoundError) Unwrap() error {
	return ErrVariableNotFound
}

// Error constructors with context
func NewVariableNotFoundError(name string) error {
	return &VariableNotFoundError{Name: name}
}

func NewGroupCountError(variable string, levels int) error {
	return fmt.Errorf("%w: %s has %d distinct values", ErrGroupCount, variable, levels)
}

func NewInsufficientDataError(operation string, have, need int) error {
	return fmt.Errorf("%w: %s needs at least %d valid values, got %d", ErrInsufficientData, operation, need, have)
}

func NewComputationError(subject string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrComputation, subject)
	}
	return fmt.Errorf("%w: %s: %v", ErrComputation, subject, cause)
}

func NewTransportError(stage string, cause error) error {
	return fmt.Errorf("%w during %s: %v", ErrTransport, stage, cause)
}

func NewInvalidDatasetError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDataset, reason)
}

func NewInvalidArgumentsError(operation string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, operation)
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalidArguments, operation, cause)
}

// ErrorCode maps an error onto its taxonomy code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoData):
		return CodeNoData
	case errors.Is(err, ErrVariableNotFound):
		return CodeVariableNotFound
	case errors.Is(err, ErrGroupCount):
		return CodeGroupCount
	case errors.Is(err, ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, ErrComputation):
		return CodeComputation
	case errors.Is(err, ErrTransport):
		return CodeTransport
	case errors.Is(err, ErrInvalidDataset):
		return CodeInvalidDataset
	case errors.Is(err, ErrInvalidArguments):
		return CodeInvalidArguments
	}
	return CodeUnknown
}

// Error checking helpers
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVariableNotFound)
}
