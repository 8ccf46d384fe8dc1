package loan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/rest"
)

// Service drives borrow/return and overdue-fee payment. The server is the
// only authority on holder state; every mutation is followed by a re-fetch on
// the caller's side, never a local merge.
type Service struct {
	log     *zap.Logger
	caller  *rest.Caller
	baseURL string
}

func NewService(log *zap.Logger, client *http.Client, baseURL string) *Service {
	log = log.Named("loan")
	return &Service{
		log:     log,
		caller:  rest.NewCaller(log, client),
		baseURL: baseURL,
	}
}

func (s *Service) Borrow(ctx context.Context, isbn string) error {
	return s.post(ctx, fmt.Sprintf("%s/api/books/%s/borrow/", s.baseURL, isbn), nil)
}

func (s *Service) Return(ctx context.Context, isbn string) error {
	return s.post(ctx, fmt.Sprintf("%s/api/books/%s/return/", s.baseURL, isbn), nil)
}

func (s *Service) PayFee(ctx context.Context, request model.PayFeeRequest) error {
	return s.post(ctx, s.baseURL+"/api/pay-fee/", request)
}

func (s *Service) post(ctx context.Context, url string, body interface{}) error {
	b := bytes.NewBuffer(nil)
	if body == nil {
		body = struct{}{}
	}
	if err := json.NewEncoder(b).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, b)
	if err != nil {
		return err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	return s.caller.Do(req, nil)
}
