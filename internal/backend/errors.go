package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrCellNotFound is the sentinel matched by *CellNotFoundError.
var ErrCellNotFound = errors.New("cell not found")

// CellNotFoundError is returned by operations that require an existing cell.
type CellNotFoundError struct {
	Cell string
	Err  error
}

func (e *CellNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cell %s does not exist or is not running: %v", e.Cell, e.Err)
	}
	return fmt.Sprintf("cell %s does not exist or is not running", e.Cell)
}

func (e *CellNotFoundError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCellNotFound) match.
func (e *CellNotFoundError) Is(target error) bool { return target == ErrCellNotFound }

// ErrKeyConflict is the sentinel matched by *KeyConflictError.
var ErrKeyConflict = errors.New("keypair conflict")

// KeyConflictError is returned when a keypair with the cell's name already
// exists remotely. It is never overwritten or reused.
type KeyConflictError struct {
	KeyName string
	KeyFile string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("keypair conflict: trying to create %s in %s, but it already exists; "+
		"delete it or try another cell name", e.KeyName, e.KeyFile)
}

// Is makes errors.Is(err, ErrKeyConflict) match.
func (e *KeyConflictError) Is(target error) bool { return target == ErrKeyConflict }

// BucketError wraps a failure to create or delete the cell bucket.
type BucketError struct {
	Bucket string
	Op     string
	Err    error
}

func (e *BucketError) Error() string {
	return fmt.Sprintf("failed to %s bucket %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *BucketError) Unwrap() error { return e.Err }

// StackActionError wraps a rejected stack create/update/delete.
type StackActionError struct {
	Stack  string
	Action string
	Err    error
}

func (e *StackActionError) Error() string {
	return fmt.Sprintf("failed to %s stack %s: %v", e.Action, e.Stack, e.Err)
}

func (e *StackActionError) Unwrap() error { return e.Err }

// RequireCell fails with *CellNotFoundError unless the cell exists.
func RequireCell(ctx context.Context, b Inspector, name string) error {
	exists, err := b.Exists(ctx)
	if err != nil {
		return &CellNotFoundError{Cell: name, Err: err}
	}
	if !exists {
		return &CellNotFoundError{Cell: name}
	}
	return nil
}
