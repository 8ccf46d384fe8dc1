package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/rest"
)

// Query narrows a catalog listing; empty fields match everything.
type Query struct {
	Title    string
	Author   string
	Category string
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Title != "" {
		v.Set("title", q.Title)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

// Service is the book catalog client. Reads work anonymously; the write
// operations require a librarian session.
type Service struct {
	log     *zap.Logger
	caller  *rest.Caller
	baseURL string
}

func NewService(log *zap.Logger, client *http.Client, baseURL string) *Service {
	log = log.Named("catalog")
	return &Service{
		log:     log,
		caller:  rest.NewCaller(log, client),
		baseURL: baseURL,
	}
}

func (s *Service) ListBooks(ctx context.Context, q Query) (model.BookPage, error) {
	u := s.baseURL + "/api/books/"
	if params := q.values().Encode(); params != "" {
		u += "?" + params
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return model.BookPage{}, err
	}
	var page model.BookPage
	if err := s.caller.Do(req, &page); err != nil {
		return model.BookPage{}, err
	}
	return page, nil
}

func (s *Service) GetBook(ctx context.Context, isbn string) (model.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/books/%s/", s.baseURL, isbn), http.NoBody)
	if err != nil {
		return model.Book{}, err
	}
	var book model.Book
	if err := s.caller.Do(req, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) CreateBook(ctx context.Context, up model.BookUpload) (model.Book, error) {
	body, contentType, err := multipartBody(up)
	if err != nil {
		return model.Book{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/books/", body)
	if err != nil {
		return model.Book{}, err
	}
	req.Header.Set(echo.HeaderContentType, contentType)
	var book model.Book
	if err := s.caller.Do(req, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, isbn string, up model.BookUpload) (model.Book, error) {
	body, contentType, err := multipartBody(up)
	if err != nil {
		return model.Book{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/api/books/%s/", s.baseURL, isbn), body)
	if err != nil {
		return model.Book{}, err
	}
	req.Header.Set(echo.HeaderContentType, contentType)
	var book model.Book
	if err := s.caller.Do(req, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, isbn string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/books/%s/", s.baseURL, isbn), http.NoBody)
	if err != nil {
		return err
	}
	return s.caller.Do(req, nil)
}

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/categories/", http.NoBody)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := s.caller.Do(req, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Filter narrows an already-fetched list locally with case-insensitive
// substring matching. An empty query returns the input unchanged.
func Filter(books []model.Book, q Query) []model.Book {
	if q.Title == "" && q.Author == "" && q.Category == "" {
		return books
	}
	matches := func(haystack, needle string) bool {
		return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		if matches(b.Title, q.Title) && matches(b.Author, q.Author) && matches(b.Category, q.Category) {
			out = append(out, b)
		}
	}
	return out
}
