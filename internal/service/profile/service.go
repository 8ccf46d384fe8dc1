package profile

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/rest"
)

// Service reads and updates the authenticated profile, including the
// multipart picture upload.
type Service struct {
	log     *zap.Logger
	caller  *rest.Caller
	baseURL string
}

func NewService(log *zap.Logger, client *http.Client, baseURL string) *Service {
	log = log.Named("profile")
	return &Service{
		log:     log,
		caller:  rest.NewCaller(log, client),
		baseURL: baseURL,
	}
}

func (s *Service) Get(ctx context.Context) (model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/user/", http.NoBody)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := s.caller.Do(req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, up model.ProfileUpdate) (model.User, error) {
	buf := bytes.NewBuffer(nil)
	w := multipart.NewWriter(buf)
	fields := map[string]string{
		"first_name": up.FirstName,
		"last_name":  up.LastName,
		"email":      up.Email,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return model.User{}, err
		}
	}
	if up.PicturePath != "" {
		f, err := os.Open(filepath.Clean(up.PicturePath))
		if err != nil {
			return model.User{}, errors.Wrap(err, "open picture")
		}
		defer f.Close()
		part, err := w.CreateFormFile("profile_picture", filepath.Base(up.PicturePath))
		if err != nil {
			return model.User{}, err
		}
		if _, err := io.Copy(part, f); err != nil {
			return model.User{}, err
		}
	}
	if err := w.Close(); err != nil {
		return model.User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/api/user/", buf)
	if err != nil {
		return model.User{}, err
	}
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	var user model.User
	if err := s.caller.Do(req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
