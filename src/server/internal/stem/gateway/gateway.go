package stemgateway

import (
	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/gateway"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/errors"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/usecase"
	"mime/multipart"
	"net/http"
)

const (
	FileField   = "file"
	ModelField  = "model"
	FormatField = "format"
)

type Gateway struct {
	usecase stemusecase.Usecase
}

func NewGateway(usecase stemusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) Separate(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		// body limit violations found while reading keep their own status
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}

		apiErr := api.CommitError(errors.Wrap(err, "Failed to parse multipart form"),
			stemerrors.NoFileCode,
			"No file provided")
		return gateway.ErrorResponse(c, apiErr)
	}

	fileHeaders := form.File[FileField]
	if len(fileHeaders) == 0 {
		// a part named "file" without a filename is parsed as a plain value
		if _, isValue := form.Value[FileField]; isValue {
			apiErr := api.CommitError(errors.New("File part has no filename"),
				stemerrors.EmptyFilenameCode,
				"Empty filename")
			return gateway.ErrorResponse(c, apiErr)
		}

		apiErr := api.CommitError(errors.New("No file part in the request"),
			stemerrors.NoFileCode,
			"No file provided")
		return gateway.ErrorResponse(c, apiErr)
	}

	fileHeader := fileHeaders[0]
	file, err := fileHeader.Open()
	if err != nil {
		apiErr := api.CommitError(errors.Wrap(err, "Failed to open uploaded file"),
			api.DefaultErrorCode,
			"Unknown error: The uploaded file could not be read")
		return gateway.ErrorResponse(c, apiErr)
	}
	defer file.Close()

	result, apiErr := g.usecase.Separate(c.Request().Context(), stemusecase.SeparateRequest{
		Filename: fileHeader.Filename,
		Model:    formValueOrDefault(form, ModelField, string(stementity.DefaultModel)),
		Format:   formValueOrDefault(form, FormatField, string(stementity.DefaultFormat)),
		File:     file,
	})
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, result)
}

// formValueOrDefault only falls back when the field is absent, a field sent
// empty is passed on and rejected by validation
func formValueOrDefault(form *multipart.Form, field string, fallback string) string {
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return fallback
	}

	return values[0]
}

func (g Gateway) Download(c echo.Context, jobID string, stemName string) error {
	stemFile, apiErr := g.usecase.FindStem(jobID, stemName)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.Attachment(stemFile.Path, stemFile.Filename)
}

type cleanupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (g Gateway) Cleanup(c echo.Context, jobID string) error {
	if apiErr := g.usecase.Cleanup(jobID); apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, cleanupResponse{
		Status:  "success",
		Message: "Job " + jobID + " cleaned up",
	})
}

type healthResponse struct {
	Status       string             `json:"status"`
	Service      string             `json:"service"`
	ModelsLoaded []stementity.Model `json:"models_loaded"`
}

func (g Gateway) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:       "healthy",
		Service:      "spleeter-api",
		ModelsLoaded: g.usecase.LoadedModels(),
	})
}

type modelsResponse struct {
	Models []stementity.ModelInfo `json:"models"`
}

func (g Gateway) Models(c echo.Context) error {
	return c.JSON(http.StatusOK, modelsResponse{
		Models: stementity.Catalog(),
	})
}

type indexResponse struct {
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	Endpoints     map[string]string `json:"endpoints"`
	Documentation string            `json:"documentation"`
}

func (g Gateway) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, indexResponse{
		Service: "Spleeter API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"health":   "GET /health",
			"models":   "GET /models",
			"separate": "POST /separate (multipart/form-data)",
			"download": "GET /download/<job_id>/<stem_name>",
			"cleanup":  "DELETE /cleanup/<job_id>",
			"metrics":  "GET /metrics",
		},
		Documentation: "https://github.com/deezer/spleeter",
	})
}
