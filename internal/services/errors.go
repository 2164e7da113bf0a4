package services

import "errors"

// ErrDatasetNotFound is returned when an output file has not been produced yet
var ErrDatasetNotFound = errors.New("dataset not found")
