package stemstorage

import "github.com/cockroachdb/errors"

var (
	JobNotFoundMark      = errors.New("Job not found")
	StemNotFoundMark     = errors.New("Stem not found")
	OutputDirMissingMark = errors.New("Output directory not found")
	DefaultErrorMark     = errors.New("Job store failure")
)
