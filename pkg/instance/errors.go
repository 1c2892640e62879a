package instance

import "errors"

var (
	// ErrAlreadyExists is returned by Create when the instance's merged
	// directory already exists and is either mounted or non-empty.
	ErrAlreadyExists = errors.New("instance: already exists")
	// ErrNotExists is returned by operations that require the instance's
	// on-disk directories to already have been created.
	ErrNotExists = errors.New("instance: does not exist")
	// ErrBusy is returned by Destroy when Stop could not bring the
	// instance down, or when the kernel reports its mount point busy on
	// unmount.
	ErrBusy = errors.New("instance: busy, could not complete operation")
)
