package testing

import (
	server_app "github.com/veedubyou/spleeter-api/src/server/application"
	"github.com/veedubyou/spleeter-api/src/shared/config/defaults"
	"github.com/veedubyou/spleeter-api/src/shared/lib/executor"
	"github.com/veedubyou/spleeter-api/src/shared/lib/rabbitmq"
	"path/filepath"
)

// Server
const (
	SpleeterBinPath = "/somewhere/spleeter"
)

// ServerConfig points the app at folders under rootDir, normally a GinkgoT().TempDir()
func ServerConfig(rootDir string, exec executor.Executor, publisher rabbitmq.Publisher) server_app.Config {
	return server_app.Config{
		UploadFolder:       filepath.Join(rootDir, "uploads"),
		OutputFolder:       filepath.Join(rootDir, "outputs"),
		SpleeterBinPath:    SpleeterBinPath,
		Executor:           exec,
		MaxContentLength:   defaults.MaxContentLength,
		Publisher:          publisher,
		CORSAllowedOrigins: []string{"*"},
		Log:                false,
	}
}
