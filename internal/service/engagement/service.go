package engagement

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/rest"
)

// Service covers favorites and notifications.
type Service struct {
	log     *zap.Logger
	caller  *rest.Caller
	baseURL string
}

func NewService(log *zap.Logger, client *http.Client, baseURL string) *Service {
	log = log.Named("engagement")
	return &Service{
		log:     log,
		caller:  rest.NewCaller(log, client),
		baseURL: baseURL,
	}
}

func (s *Service) CheckFavorite(ctx context.Context, isbn string) (model.FavoriteStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/favorite/check/%s/", s.baseURL, isbn), http.NoBody)
	if err != nil {
		return model.FavoriteStatus{}, err
	}
	var status model.FavoriteStatus
	if err := s.caller.Do(req, &status); err != nil {
		return model.FavoriteStatus{}, err
	}
	return status, nil
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, isbn string) (model.FavoriteStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/favorite/%s/", s.baseURL, isbn), http.NoBody)
	if err != nil {
		return model.FavoriteStatus{}, err
	}
	var status model.FavoriteStatus
	if err := s.caller.Do(req, &status); err != nil {
		return model.FavoriteStatus{}, err
	}
	return status, nil
}

func (s *Service) Notifications(ctx context.Context) (model.NotificationPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/notifications/", http.NoBody)
	if err != nil {
		return model.NotificationPage{}, err
	}
	var page model.NotificationPage
	if err := s.caller.Do(req, &page); err != nil {
		return model.NotificationPage{}, err
	}
	return page, nil
}

func (s *Service) MarkRead(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/notifications/%d/read/", s.baseURL, id), http.NoBody)
	if err != nil {
		return err
	}
	return s.caller.Do(req, nil)
}
