package stemerrors

import (
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
)

// validation
const (
	NoFileCode             = api.ErrorCode("no_file")
	EmptyFilenameCode      = api.ErrorCode("empty_filename")
	FileTypeNotAllowedCode = api.ErrorCode("file_type_not_allowed")
	InvalidModelCode       = api.ErrorCode("invalid_model")
	InvalidFormatCode      = api.ErrorCode("invalid_format")
	RateLimitedCode        = api.ErrorCode("rate_limited")
)

// lookups
const (
	JobNotFoundCode  = api.ErrorCode("job_not_found")
	StemNotFoundCode = api.ErrorCode("stem_not_found")
)

// processing
const (
	SeparationFailedCode = api.ErrorCode("separation_failed")
	CleanupFailedCode    = api.ErrorCode("cleanup_failed")
)
