package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/mmfoods/storefront/internal/apperror"
)

// encodeMultipart builds a multipart/form-data body from plain fields plus
// an optional single file part. fileName=="" or fileData==nil skips the
// file part entirely.
func encodeMultipart(fields map[string]string, fileField, fileName string, fileData []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return nil, "", apperror.NewInternal(fmt.Errorf("writing form field %s: %w", key, err))
		}
	}

	if fileField != "" && fileName != "" && fileData != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, "", apperror.NewInternal(fmt.Errorf("creating file part: %w", err))
		}
		if _, err := part.Write(fileData); err != nil {
			return nil, "", apperror.NewInternal(fmt.Errorf("writing file part: %w", err))
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("finalizing multipart body: %w", err))
	}

	return &buf, w.FormDataContentType(), nil
}
