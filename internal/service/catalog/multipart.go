package catalog

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/openshelf/openshelf/internal/model"
)

// multipartBody renders a BookUpload as multipart/form-data. File parts are
// attached only when a path was supplied.
func multipartBody(up model.BookUpload) (io.Reader, string, error) {
	buf := bytes.NewBuffer(nil)
	w := multipart.NewWriter(buf)

	fields := map[string]string{
		"isbn":           up.ISBN,
		"title":          up.Title,
		"author":         up.Author,
		"published_date": up.PublishedDate,
		"description":    up.Description,
		"category":       up.Category,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}
	if err := attachFile(w, "image", up.ImagePath); err != nil {
		return nil, "", err
	}
	if err := attachFile(w, "pdf", up.PDFPath); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func attachFile(w *multipart.Writer, field, path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "open %s", field)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
