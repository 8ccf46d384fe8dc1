package loan_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/loan"
)

const (
	testISBN  = "9780000000001"
	testEmail = "user@example.com"
)

// loanServer tracks one book's holder so borrow and return observe each
// other's state.
type loanServer struct {
	mu       sync.Mutex
	holder   string
	feesPaid []model.PayFeeRequest
}

func (l *loanServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books/"+testISBN+"/borrow/", func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.holder != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Book already borrowed."}) //nolint:errcheck
			return
		}
		l.holder = testEmail
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/books/"+testISBN+"/return/", func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.holder == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Book is not borrowed."}) //nolint:errcheck
			return
		}
		l.holder = ""
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/pay-fee/", func(w http.ResponseWriter, r *http.Request) {
		var req model.PayFeeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		l.mu.Lock()
		l.feesPaid = append(l.feesPaid, req)
		l.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func newLoanFixture(t *testing.T) (*loan.Service, *loanServer) {
	t.Helper()
	ls := &loanServer{}
	srv := httptest.NewServer(ls.handler())
	t.Cleanup(srv.Close)
	return loan.NewService(zap.NewNop(), srv.Client(), srv.URL), ls
}

func TestBorrowThenReturn(t *testing.T) {
	svc, ls := newLoanFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Borrow(ctx, testISBN))
	require.Equal(t, testEmail, ls.holder)

	// the server rejects a second borrow while held
	err := svc.Borrow(ctx, testISBN)
	require.Error(t, err)
	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Book already borrowed.", apiErr.Message)

	require.NoError(t, svc.Return(ctx, testISBN))
	require.Empty(t, ls.holder)

	// and a return with nothing borrowed fails the same way
	require.Error(t, svc.Return(ctx, testISBN))
}

func TestPayFee(t *testing.T) {
	svc, ls := newLoanFixture(t)

	req := model.PayFeeRequest{ISBN: testISBN, Amount: 2.5}
	require.NoError(t, svc.PayFee(context.Background(), req))
	require.Equal(t, []model.PayFeeRequest{req}, ls.feesPaid)
}
