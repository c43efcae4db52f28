package application_test

import (
	"fmt"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/spleeter-api/src/server/application"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/entity"
	"github.com/veedubyou/spleeter-api/src/shared/lib/rabbitmq/rabbitmqfakes"
	. "github.com/veedubyou/spleeter-api/src/shared/testing"
	"github.com/veedubyou/spleeter-api/src/shared/testing/dummy"
	"net/http"
	"net/http/httptest"
	"strings"
)

var _ = Describe("App", func() {
	var (
		config        application.Config
		app           application.App
		dummyExecutor *dummy.SpleeterExecutor
	)

	BeforeEach(func() {
		dummyExecutor = dummy.NewDummySpleeterExecutor()
		config = ServerConfig(GinkgoT().TempDir(), dummyExecutor, &rabbitmqfakes.FakePublisher{})
	})

	JustBeforeEach(func() {
		app = application.NewApp(config)
	})

	var serve = func(request *http.Request) *httptest.ResponseRecorder {
		response := httptest.NewRecorder()
		app.ServeHTTP(response, request)
		return response
	}

	var separateRequest = func() *http.Request {
		return RequestFactory{
			Method: "POST",
			Target: "/separate",
			Fields: map[string]string{"model": "spleeter:2stems"},
			Files:  []Upload{{FieldName: "file", Filename: "song.mp3", Content: []byte("la")}},
		}.MakeFake()
	}

	It("answers the health check", func() {
		response := serve(RequestFactory{Method: "GET", Target: "/health"}.MakeFake())
		Expect(response.Code).To(Equal(http.StatusOK))

		body := DecodeJSON[map[string]any](response.Body)
		Expect(body["service"]).To(Equal("spleeter-api"))
		Expect(ExpectType[[]any](body["models_loaded"])).To(BeEmpty())
	})

	It("serves the model catalog", func() {
		response := serve(RequestFactory{Method: "GET", Target: "/models"}.MakeFake())
		Expect(response.Code).To(Equal(http.StatusOK))

		body := DecodeJSON[map[string][]stementity.ModelInfo](response.Body)
		Expect(body["models"]).To(HaveLen(3))
	})

	It("routes a full job lifecycle", func() {
		response := serve(separateRequest())
		Expect(response.Code).To(Equal(http.StatusOK))
		result := DecodeJSON[stementity.SeparationResult](response.Body)

		download := serve(RequestFactory{
			Method: "GET",
			Target: fmt.Sprintf("/download/%s/%s", result.JobID, "accompaniment"),
		}.MakeFake())
		Expect(download.Code).To(Equal(http.StatusOK))
		Expect(download.Body.Bytes()).To(Equal(dummy.StemContent([]byte("la"), "accompaniment")))

		cleanup := serve(RequestFactory{
			Method: "DELETE",
			Target: fmt.Sprintf("/cleanup/%s", result.JobID),
		}.MakeFake())
		Expect(cleanup.Code).To(Equal(http.StatusOK))
	})

	It("answers CORS preflights", func() {
		response := serve(RequestFactory{
			Method: "OPTIONS",
			Target: "/separate",
			Mods: RequestModifiers{
				WithHeader(echo.HeaderOrigin, "http://localhost:3000"),
				WithHeader(echo.HeaderAccessControlRequestMethod, "POST"),
			},
		}.MakeFake())

		Expect(response.Code).To(Equal(http.StatusNoContent))
		Expect(response.Header().Get(echo.HeaderAccessControlAllowOrigin)).To(Equal("*"))
	})

	Describe("Metrics", func() {
		It("exposes request and separation metrics", func() {
			Expect(serve(separateRequest()).Code).To(Equal(http.StatusOK))

			response := serve(RequestFactory{Method: "GET", Target: "/metrics"}.MakeFake())
			Expect(response.Code).To(Equal(http.StatusOK))

			body := response.Body.String()
			Expect(body).To(ContainSubstring(`spleeter_api_http_requests_total{method="POST",path="/separate",status="200"} 1`))
			Expect(body).To(ContainSubstring(`spleeter_api_separations_total{format="mp3",model="spleeter:2stems",result="success"} 1`))
			Expect(body).To(ContainSubstring("spleeter_api_models_loaded 1"))
		})
	})

	Describe("Body limit", func() {
		BeforeEach(func() {
			config.MaxContentLength = "1K"
		})

		It("rejects oversized uploads", func() {
			response := serve(RequestFactory{
				Method: "POST",
				Target: "/separate",
				Files: []Upload{{
					FieldName: "file",
					Filename:  "song.mp3",
					Content:   []byte(strings.Repeat("a", 4096)),
				}},
			}.MakeFake())

			Expect(response.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(dummyExecutor.Commands()).To(BeEmpty())
		})

		It("rejects oversized chunked uploads", func() {
			response := serve(RequestFactory{
				Method: "POST",
				Target: "/separate",
				Files: []Upload{{
					FieldName: "file",
					Filename:  "song.mp3",
					Content:   []byte(strings.Repeat("a", 4096)),
				}},
				Mods: RequestModifiers{WithChunkedBody()},
			}.MakeFake())

			Expect(response.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(dummyExecutor.Commands()).To(BeEmpty())
		})
	})

	Describe("Rate limiting", func() {
		BeforeEach(func() {
			config.SeparateRateLimit = 0.001
			config.SeparateRateBurst = 1
		})

		It("turns away separations past the burst", func() {
			Expect(serve(separateRequest()).Code).To(Equal(http.StatusOK))

			response := serve(separateRequest())
			Expect(response.Code).To(Equal(http.StatusTooManyRequests))
			Expect(DecodeJSONError(response.Body).Code).To(Equal("rate_limited"))
		})

		It("leaves other routes alone", func() {
			Expect(serve(separateRequest()).Code).To(Equal(http.StatusOK))

			for i := 0; i < 3; i++ {
				Expect(serve(RequestFactory{Method: "GET", Target: "/health"}.MakeFake()).Code).To(Equal(http.StatusOK))
			}
		})
	})
})
