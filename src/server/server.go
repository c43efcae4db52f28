package main

import (
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/veedubyou/spleeter-api/src/server/application"
	"github.com/veedubyou/spleeter-api/src/shared/config/defaults"
	"github.com/veedubyou/spleeter-api/src/shared/config/envvar"
	"github.com/veedubyou/spleeter-api/src/shared/lib/env"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	environment := env.Get()
	setupLogging(environment)

	var appConfig application.Config

	switch environment {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = baseConfig()
		appConfig.CORSAllowedOrigins = allowedOrigins
	case env.Development:
		appConfig = baseConfig()
		appConfig.CORSAllowedOrigins = []string{"*"}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		<-signals

		if err := app.Stop(); err != nil {
			log.WithError(err).Error("Failed to stop cleanly")
		}
	}()

	if err := app.Start(); err != nil {
		panic(err)
	}
}

func baseConfig() application.Config {
	return application.Config{
		UploadFolder:      envvar.GetOrDefault(envvar.UPLOAD_FOLDER, defaults.UploadFolder),
		OutputFolder:      envvar.GetOrDefault(envvar.OUTPUT_FOLDER, defaults.OutputFolder),
		SpleeterBinPath:   envvar.GetOrDefault(envvar.SPLEETER_BIN_PATH, defaults.SpleeterBinPath),
		MaxContentLength:  defaults.MaxContentLength,
		RabbitMQURL:       envvar.GetOrDefault(envvar.RABBITMQ_URL, ""),
		RabbitMQQueueName: envvar.GetOrDefault(envvar.RABBITMQ_QUEUE_NAME, ""),
		SeparateRateLimit: envvar.GetFloatOrDefault(envvar.SEPARATE_RATE_LIMIT, 0),
		SeparateRateBurst: envvar.GetIntOrDefault(envvar.SEPARATE_RATE_BURST, defaults.SeparateRateBurst),
		Port:              envvar.GetOrDefault(envvar.PORT, defaults.Port),
		Log:               true,
	}
}

func setupLogging(environment env.Environment) {
	if environment == env.Production {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(cli.New(os.Stderr))
	}

	level, err := log.ParseLevel(envvar.GetOrDefault(envvar.LOG_LEVEL, "info"))
	if err != nil {
		panic("Invalid LOG_LEVEL: " + err.Error())
	}
	log.SetLevel(level)
}
