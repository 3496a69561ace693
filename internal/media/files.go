package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vidtube/internal/httperr"
)

const maxUploadSizeBytes = 10 << 20

// DataURIFromForm reads the named multipart file field and returns it as a
// base64 data URI suitable for a cloudinary upload. An absent field is not
// an error: it returns "", nil so callers decide whether the attachment is
// required.
func DataURIFromForm(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", httperr.BadRequest(fmt.Sprintf("invalid %s file", field))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
	if err != nil {
		return "", httperr.BadRequest(fmt.Sprintf("failed to read %s file", field))
	}
	if len(data) == 0 {
		return "", httperr.BadRequest(fmt.Sprintf("%s file is empty", field))
	}
	if len(data) > maxUploadSizeBytes {
		return "", httperr.BadRequest(fmt.Sprintf("%s file is too large", field))
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", httperr.BadRequest(fmt.Sprintf("%s file must be an image", field))
	}

	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
