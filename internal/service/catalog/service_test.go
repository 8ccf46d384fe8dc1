package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/errs"
	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/catalog"
)

var shelf = []model.Book{
	{ISBN: "9780000000001", Title: "Dune", Author: "Frank Herbert", Category: "Sci-Fi"},
	{ISBN: "9780000000002", Title: "Dune Messiah", Author: "Frank Herbert", Category: "Sci-Fi"},
	{ISBN: "9780000000003", Title: "The Hobbit", Author: "J.R.R. Tolkien", Category: "Fantasy"},
}

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/books/" {
			page := model.BookPage{Count: len(shelf), Results: shelf}
			if title := r.URL.Query().Get("title"); title != "" {
				page.Results = catalog.Filter(shelf, catalog.Query{Title: title})
				page.Count = len(page.Results)
			}
			json.NewEncoder(w).Encode(page) //nolint:errcheck
			return
		}
		for _, b := range shelf {
			if r.URL.Path == "/api/books/"+b.ISBN+"/" {
				json.NewEncoder(w).Encode(b) //nolint:errcheck
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Not found."}) //nolint:errcheck
	})
	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Category{ //nolint:errcheck
			{ID: 1, Name: "Sci-Fi"},
			{ID: 2, Name: "Fantasy"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newCatalogService(t *testing.T) *catalog.Service {
	t.Helper()
	srv := newCatalogServer(t)
	return catalog.NewService(zap.NewNop(), srv.Client(), srv.URL)
}

func TestListBooks(t *testing.T) {
	svc := newCatalogService(t)

	page, err := svc.ListBooks(context.Background(), catalog.Query{})
	require.NoError(t, err)
	require.Equal(t, 3, page.Count)
	require.Len(t, page.Results, 3)
	require.Equal(t, "Dune", page.Results[0].Title)
	require.True(t, page.Results[0].Available())
}

func TestListBooksWithQuery(t *testing.T) {
	svc := newCatalogService(t)

	page, err := svc.ListBooks(context.Background(), catalog.Query{Title: "hobbit"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, "The Hobbit", page.Results[0].Title)
}

func TestGetBook(t *testing.T) {
	svc := newCatalogService(t)

	book, err := svc.GetBook(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.Equal(t, "Dune", book.Title)

	_, err = svc.GetBook(context.Background(), "0000000000000")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCategories(t *testing.T) {
	svc := newCatalogService(t)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Sci-Fi", categories[0].Name)
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		query catalog.Query
		want  []string
	}{
		{
			name:  "empty-query-returns-all",
			query: catalog.Query{},
			want:  []string{"Dune", "Dune Messiah", "The Hobbit"},
		},
		{
			name:  "title-is-case-insensitive",
			query: catalog.Query{Title: "dune"},
			want:  []string{"Dune", "Dune Messiah"},
		},
		{
			name:  "author-substring",
			query: catalog.Query{Author: "tolkien"},
			want:  []string{"The Hobbit"},
		},
		{
			name:  "fields-combine-with-and",
			query: catalog.Query{Title: "dune", Category: "fantasy"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Filter(shelf, tt.query)
			titles := make([]string, 0, len(got))
			for _, b := range got {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := []model.Book{{Title: "Dune"}, {Title: "The Hobbit"}}
	_ = catalog.Filter(in, catalog.Query{Title: "hobbit"})
	require.Equal(t, "Dune", in[0].Title)
	require.Equal(t, "The Hobbit", in[1].Title)
}
