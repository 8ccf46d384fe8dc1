package rest

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/pkg/breaker"
)

// Caller is the shared request plumbing for the API service clients: one
// circuit breaker per remote concern, non-2xx mapped onto errs sentinels.
type Caller struct {
	log    *zap.Logger
	client *http.Client
	cb     *breaker.Breaker
}

func NewCaller(log *zap.Logger, client *http.Client) *Caller {
	return &Caller{
		log:    log,
		client: client,
		cb:     breaker.New(10, 30*time.Second, 0.5, 5),
	}
}

// Do runs the request through the breaker and decodes a 2xx JSON body into
// out when given. Client-side 4xx responses are surfaced to the caller but do
// not count against the breaker.
func (c *Caller) Do(req *http.Request, out interface{}) error {
	var apiErr error
	err := c.cb.Call(func() error {
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
			return errs.FromResponse(resp.StatusCode, nil)
		case resp.StatusCode >= http.StatusMultipleChoices:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10)) //nolint:errcheck
			apiErr = errs.FromResponse(resp.StatusCode, body)
			return nil
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return err
	}
	return apiErr
}
