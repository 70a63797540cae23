package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no data", ErrNoData, CodeNoData},
		{"variable", NewVariableNotFoundError("年龄"), CodeVariableNotFound},
		{"group count", NewGroupCountError("grade", 3), CodeGroupCount},
		{"insufficient", NewInsufficientDataError("t-test", 1, 2), CodeInsufficientData},
		{"computation", NewComputationError("pearson", nil), CodeComputation},
		{"transport", NewTransportError("narration", errors.New("timeout")), CodeTransport},
		{"dataset", NewInvalidDatasetError("no header"), CodeInvalidDataset},
		{"arguments", NewInvalidArgumentsError("describe", nil), CodeInvalidArguments},
		{"wrapped", fmt.Errorf("outer: %w", ErrNoData), CodeNoData},
		{"other", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVariableNotFoundError(t *testing.T) {
	err := NewVariableNotFoundError("满意度")

	var vnf *VariableNotFoundError
	if !errors.As(err, &vnf) || vnf.Name != "满意度" {
		t.Fatalf("expected VariableNotFoundError carrying the raw name, got %v", err)
	}
	if !IsNotFoundError(err) {
		t.Error("IsNotFoundError should match")
	}
	if IsTransportError(err) {
		t.Error("IsTransportError should not match")
	}
}
