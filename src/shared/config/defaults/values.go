package defaults

// Filesystem
const (
	UploadFolder = "/app/uploads"
	OutputFolder = "/app/outputs"
)

// Server
const (
	Port              = ":5000"
	SpleeterBinPath   = "spleeter"
	MaxContentLength  = "100M"
	SeparateRateBurst = 4
)
