package testing

import (
	"bytes"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/onsi/gomega"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
)

type RequestModifier func(r *http.Request)

type RequestModifiers []RequestModifier

func WithHeader(key string, value string) RequestModifier {
	return func(request *http.Request) {
		request.Header.Set(key, value)
	}
}

// WithChunkedBody hides the body length, the way a chunked upload arrives
func WithChunkedBody() RequestModifier {
	return func(request *http.Request) {
		request.ContentLength = -1
		request.TransferEncoding = []string{"chunked"}
	}
}

// Upload is a file part of a multipart request. An empty Filename still
// produces a part named FieldName, the way browsers send an empty file input.
type Upload struct {
	FieldName string
	Filename  string
	Content   []byte
}

type RequestFactory struct {
	Method string
	Target string
	Fields map[string]string
	Files  []Upload
	Mods   RequestModifiers
}

func (r RequestFactory) isMultipart() bool {
	return len(r.Fields) > 0 || len(r.Files) > 0
}

func (r RequestFactory) multipartBody() (io.Reader, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	for key, value := range r.Fields {
		err := writer.WriteField(key, value)
		gomega.ExpectWithOffset(2, err).NotTo(gomega.HaveOccurred())
	}

	for _, upload := range r.Files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, upload.FieldName, upload.Filename))
		header.Set(echo.HeaderContentType, "application/octet-stream")

		part, err := writer.CreatePart(header)
		gomega.ExpectWithOffset(2, err).NotTo(gomega.HaveOccurred())

		_, err = part.Write(upload.Content)
		gomega.ExpectWithOffset(2, err).NotTo(gomega.HaveOccurred())
	}

	err := writer.Close()
	gomega.ExpectWithOffset(2, err).NotTo(gomega.HaveOccurred())

	return buf, writer.FormDataContentType()
}

func (r RequestFactory) MakeFake() *http.Request {
	var body io.Reader
	contentType := ""

	if r.isMultipart() {
		body, contentType = r.multipartBody()
	}

	request := httptest.NewRequest(r.Method, r.Target, body)
	if contentType != "" {
		request.Header.Set(echo.HeaderContentType, contentType)
	}

	for _, mod := range r.Mods {
		mod(request)
	}

	return request
}
