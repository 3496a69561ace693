package media_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vidtube/internal/httperr"
	"vidtube/internal/media"
)

func multipartRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if field != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="upload.bin"`)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req
}

func TestDataURIFromForm(t *testing.T) {
	req := multipartRequest(t, "avatar", "image/png", []byte("avatar-bytes"))

	uri, err := media.DataURIFromForm(req, "avatar")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestDataURIFromFormAbsentField(t *testing.T) {
	req := multipartRequest(t, "avatar", "image/png", []byte("avatar-bytes"))

	uri, err := media.DataURIFromForm(req, "coverImage")
	require.NoError(t, err)
	require.Empty(t, uri)
}

func TestDataURIFromFormRejectsNonImage(t *testing.T) {
	req := multipartRequest(t, "avatar", "text/plain", []byte("not an image"))

	_, err := media.DataURIFromForm(req, "avatar")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httperr.From(err).Status)
}

func TestDataURIFromFormRejectsEmptyFile(t *testing.T) {
	req := multipartRequest(t, "avatar", "image/png", nil)

	_, err := media.DataURIFromForm(req, "avatar")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httperr.From(err).Status)
}
