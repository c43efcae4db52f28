package application

import (
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/veedubyou/spleeter-api/src/server/internal/engine"
	"github.com/veedubyou/spleeter-api/src/server/internal/metrics"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/gateway"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/notify"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/storage"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/usecase"
	"github.com/veedubyou/spleeter-api/src/shared/lib/executor"
	"github.com/veedubyou/spleeter-api/src/shared/lib/rabbitmq"
	"net/http"
)

type HTTPMethod string

const (
	GET    HTTPMethod = "GET"
	POST   HTTPMethod = "POST"
	DELETE HTTPMethod = "DELETE"
)

type App struct {
	echo      *echo.Echo
	port      string
	publisher rabbitmq.Publisher
}

type Config struct {
	UploadFolder     string
	OutputFolder     string
	SpleeterBinPath  string
	Executor         executor.Executor
	MaxContentLength string

	// events are discarded when RabbitMQURL is empty and Publisher is nil
	RabbitMQURL       string
	RabbitMQQueueName string
	Publisher         rabbitmq.Publisher

	// a SeparateRateLimit of 0 disables rate limiting on /separate
	SeparateRateLimit float64
	SeparateRateBurst int

	CORSAllowedOrigins []string
	Port               string
	Log                bool
}

func NewApp(config Config) App {
	e := echo.New()
	e.HideBanner = true

	if config.Log {
		e.Use(middleware.Logger())
	}

	if config.MaxContentLength != "" {
		e.Use(middleware.BodyLimit(config.MaxContentLength))
	}

	engines := makeEngineCache(config)
	appMetrics := metrics.New(func() int {
		return len(engines.Loaded())
	})
	e.Use(appMetrics.Middleware())

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc, routeMiddleware ...echo.MiddlewareFunc) {
		middlewares := append([]echo.MiddlewareFunc{corsMiddleware}, routeMiddleware...)

		e.OPTIONS(path, handlerFunc, corsMiddleware)

		switch method {
		case GET:
			e.GET(path, handlerFunc, middlewares...)
		case POST:
			e.POST(path, handlerFunc, middlewares...)
		case DELETE:
			e.DELETE(path, handlerFunc, middlewares...)
		default:
			panic("unhandled http method!")
		}
	}

	publisher := makeRabbitMQPublisher(config)
	stemUsecase := makeStemUsecase(config, engines, publisher, appMetrics)
	stemGateway := stemgateway.NewGateway(stemUsecase)

	// informational routes
	handleRoute(GET, "/", stemGateway.Index)
	handleRoute(GET, "/health", stemGateway.Health)
	handleRoute(GET, "/models", stemGateway.Models)
	handleRoute(GET, "/metrics", appMetrics.Handler())

	// job routes
	handleRoute(POST, "/separate", stemGateway.Separate,
		makeRateLimitMiddleware(config.SeparateRateLimit, config.SeparateRateBurst))
	handleRoute(GET, "/download/:job_id/:stem", func(c echo.Context) error {
		jobID := c.Param("job_id")
		stemName := c.Param("stem")
		return stemGateway.Download(c, jobID, stemName)
	})
	handleRoute(DELETE, "/cleanup/:job_id", func(c echo.Context) error {
		jobID := c.Param("job_id")
		return stemGateway.Cleanup(c, jobID)
	})

	return App{
		echo:      e,
		port:      config.Port,
		publisher: publisher,
	}
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.echo.ServeHTTP(w, r)
}

func (a *App) Start() error {
	log.WithField("port", a.port).Info("Starting spleeter api")

	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	if queuePublisher, ok := a.publisher.(*rabbitmq.QueuePublisher); ok {
		queuePublisher.Close()
	}

	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func makeEngineCache(config Config) *engine.Cache {
	bin := config.SpleeterBinPath
	if bin == "" {
		bin = "spleeter"
	}

	exec := config.Executor
	if exec == nil {
		exec = executor.BinaryFileExecutor{}
	}

	return engine.NewCache(engine.NewSpleeterFactory(bin, exec))
}

func makeRabbitMQPublisher(config Config) rabbitmq.Publisher {
	if config.Publisher != nil {
		return config.Publisher
	}

	if config.RabbitMQURL == "" {
		log.Info("No RabbitMQ url configured, job events will be discarded")
		return rabbitmq.DiscardPublisher{}
	}

	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func makeStemUsecase(config Config, engines *engine.Cache, publisher rabbitmq.Publisher, observer stemusecase.SeparationObserver) stemusecase.Usecase {
	jobStore, err := stemstorage.NewJobStore(config.UploadFolder, config.OutputFolder)
	if err != nil {
		panic(errors.Wrap(err, "Failed to prepare job folders"))
	}

	notifier := stemnotify.NewNotifier(publisher)
	return stemusecase.NewUsecase(jobStore, engines, notifier, observer)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType},
	})
}
