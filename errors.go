package cork

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches Get/Remove failures on absent keys:
	// errors.Is(err, cork.ErrNotFound).
	ErrNotFound = errors.New("cork: not found")

	// ErrInvalidArgument matches caller errors: a mapping value handed to a
	// ValueTable, or a record whose embedded key field conflicts with the
	// supplied key.
	ErrInvalidArgument = errors.New("cork: invalid argument")

	// ErrBackendUnavailable matches store connection failures at
	// construction time. The backend cannot be used until resolved.
	ErrBackendUnavailable = errors.New("cork: backend unavailable")
)

// NotFoundError reports an absent key in a named collection.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cork: %s[%q]: not found", e.Collection, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ArgumentError reports a caller error on a collection operation.
type ArgumentError struct {
	Collection string
	Reason     string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("cork: %s: %s", e.Collection, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// UnavailableError wraps the store error that prevented construction.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("cork: backend unavailable: %v", e.Err)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrBackendUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

// InvalidateError carries the partial failures of a cache invalidation: the
// generation bump and the provider delete are independent best-effort steps.
// It is reported through Hooks, never returned from collection operations.
type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
