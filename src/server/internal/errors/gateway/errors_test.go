package gateway_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/api"
	"github.com/veedubyou/spleeter-api/src/server/internal/errors/gateway"
	"github.com/veedubyou/spleeter-api/src/server/internal/stem/errors"
	. "github.com/veedubyou/spleeter-api/src/shared/testing"
	"net/http"
	"net/http/httptest"
)

var _ = Describe("Error gateway", func() {
	DescribeTable("status codes",
		func(code api.ErrorCode, expectedStatus int) {
			Expect(gateway.StatusCode(code)).To(Equal(expectedStatus))
		},
		Entry("default", api.DefaultErrorCode, http.StatusInternalServerError),
		Entry("no file", stemerrors.NoFileCode, http.StatusBadRequest),
		Entry("empty filename", stemerrors.EmptyFilenameCode, http.StatusBadRequest),
		Entry("file type not allowed", stemerrors.FileTypeNotAllowedCode, http.StatusBadRequest),
		Entry("invalid model", stemerrors.InvalidModelCode, http.StatusBadRequest),
		Entry("invalid format", stemerrors.InvalidFormatCode, http.StatusBadRequest),
		Entry("rate limited", stemerrors.RateLimitedCode, http.StatusTooManyRequests),
		Entry("job not found", stemerrors.JobNotFoundCode, http.StatusNotFound),
		Entry("stem not found", stemerrors.StemNotFoundCode, http.StatusNotFound),
		Entry("separation failed", stemerrors.SeparationFailedCode, http.StatusInternalServerError),
		Entry("cleanup failed", stemerrors.CleanupFailedCode, http.StatusInternalServerError),
	)

	It("panics on an unmapped code", func() {
		Expect(func() {
			gateway.StatusCode(api.ErrorCode("made_up"))
		}).To(Panic())
	})

	Describe("Error response", func() {
		It("writes the error body", func() {
			request := RequestFactory{Method: "GET", Target: "/download/abc/vocals"}.MakeFake()
			response := httptest.NewRecorder()
			c := PrepareEchoContext(request, response)

			apiErr := api.CommitError(errors.New("no such dir"), stemerrors.JobNotFoundCode, "Job not found")
			Expect(gateway.ErrorResponse(c, apiErr)).To(Succeed())

			Expect(response.Code).To(Equal(http.StatusNotFound))
			body := DecodeJSONError(response.Body)
			Expect(body.Status).To(Equal("error"))
			Expect(body.Code).To(Equal("job_not_found"))
			Expect(body.Msg).To(Equal("Job not found"))
			Expect(body.ErrorDetails).To(ContainSubstring("no such dir"))
		})
	})
})
