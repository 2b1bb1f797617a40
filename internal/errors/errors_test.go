package errors

import (
	"fmt"
	"testing"
)

func TestIsCode(t *testing.T) {
	appErr := NewStoreError(ErrCodeRecordNotFound, "candidate record not found", nil)

	if !IsCode(appErr, ErrCodeRecordNotFound) {
		t.Error("IsCode() = false for a direct AppError")
	}
	if IsCode(appErr, ErrCodeDuplicateRecord) {
		t.Error("IsCode() = true for a different code")
	}
	if IsCode(nil, ErrCodeRecordNotFound) {
		t.Error("IsCode(nil) = true")
	}
	if IsCode(fmt.Errorf("plain error"), ErrCodeRecordNotFound) {
		t.Error("IsCode() = true for a non-AppError")
	}
}

func TestIsCodeSeesThroughWrapping(t *testing.T) {
	appErr := NewValidationError(ErrCodeInvalidRequest, "external uid is required", nil)
	wrapped := fmt.Errorf("failed to upsert candidate record: %w", appErr)

	if !IsCode(wrapped, ErrCodeInvalidRequest) {
		t.Error("IsCode() = false for a wrapped AppError")
	}

	doubleWrapped := fmt.Errorf("command failed: %w", wrapped)
	if !IsCode(doubleWrapped, ErrCodeInvalidRequest) {
		t.Error("IsCode() = false for a doubly wrapped AppError")
	}
	if IsCode(doubleWrapped, ErrCodeDuplicateRecord) {
		t.Error("IsCode() = true for a different code through wrapping")
	}
}
