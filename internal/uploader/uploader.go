package uploader

import (
	"context"
	"errors"
	"fmt"
)

// ErrRejected is matched by every error returned for a non-success response.
var ErrRejected = errors.New("record rejected")

// Uploader stores a single record
type Uploader interface {
	// Upload sends one record. The record is either stored whole or not at all.
	Upload(ctx context.Context, fields map[string]string) error
}

// RejectedError carries the response the store answered with.
type RejectedError struct {
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("record rejected: status %d: %s", e.Status, e.Body)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
