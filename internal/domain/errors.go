package domain

import "errors"

var (
	// ErrNotDue is returned when the watermark is younger than the minimum run interval
	ErrNotDue = errors.New("update not due yet")

	// ErrRunInProgress is returned when another run holds the single-writer lock
	ErrRunInProgress = errors.New("another update run is in progress")

	// ErrRemoteSource is returned when the remote raster source fails permanently
	ErrRemoteSource = errors.New("remote source error")

	// ErrInvalidFeature is returned when a reduced feature lacks the fields needed to build a row
	ErrInvalidFeature = errors.New("invalid reduced feature")

	// ErrObjectNotFound is returned by object storage when a key does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrRegionNotFound is returned when a region key is not present in the wide table
	ErrRegionNotFound = errors.New("region not found")
)
