package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// DryRunUploader prints what would be uploaded without sending anything
type DryRunUploader struct {
	mu    sync.Mutex
	out   io.Writer
	count int
}

// NewDryRunUploader creates a dry-run uploader writing to out, or stdout when out is nil
func NewDryRunUploader(out io.Writer) *DryRunUploader {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunUploader{out: out}
}

// Upload prints the record as indented JSON
func (u *DryRunUploader) Upload(ctx context.Context, fields map[string]string) error {
	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.count++
	if _, err := fmt.Fprintf(u.out, "--- Record %d ---\n%s\n\n", u.count, data); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// Count returns how many records were printed.
func (u *DryRunUploader) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.count
}
