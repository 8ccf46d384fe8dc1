package cli

import (
	"context"

	"github.com/openshelf/openshelf/internal/model"
	"github.com/openshelf/openshelf/internal/service/catalog"
	"github.com/openshelf/openshelf/internal/service/engagement"
	"github.com/openshelf/openshelf/internal/service/loan"
	"github.com/openshelf/openshelf/internal/service/profile"
	"github.com/openshelf/openshelf/internal/session"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ Session           = (*session.Manager)(nil)
	_ CatalogService    = (*catalog.Service)(nil)
	_ LoanService       = (*loan.Service)(nil)
	_ ProfileService    = (*profile.Service)(nil)
	_ EngagementService = (*engagement.Service)(nil)
)

type Session interface {
	Login(ctx context.Context, email, password string, asLibrarian bool) (*model.User, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*model.User, error)
	Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error)
	FetchCurrentUser(ctx context.Context) (*model.User, error)
	Logout() error
	CurrentUser() *model.User
	Authenticated() bool
	AccessToken() (string, error)
	Subscribe(fn session.Subscriber)
}

type CatalogService interface {
	ListBooks(ctx context.Context, q catalog.Query) (model.BookPage, error)
	GetBook(ctx context.Context, isbn string) (model.Book, error)
	CreateBook(ctx context.Context, up model.BookUpload) (model.Book, error)
	UpdateBook(ctx context.Context, isbn string, up model.BookUpload) (model.Book, error)
	DeleteBook(ctx context.Context, isbn string) error
	Categories(ctx context.Context) ([]model.Category, error)
}

type LoanService interface {
	Borrow(ctx context.Context, isbn string) error
	Return(ctx context.Context, isbn string) error
	PayFee(ctx context.Context, request model.PayFeeRequest) error
}

type ProfileService interface {
	Get(ctx context.Context) (model.User, error)
	Update(ctx context.Context, up model.ProfileUpdate) (model.User, error)
}

type EngagementService interface {
	CheckFavorite(ctx context.Context, isbn string) (model.FavoriteStatus, error)
	ToggleFavorite(ctx context.Context, isbn string) (model.FavoriteStatus, error)
	Notifications(ctx context.Context) (model.NotificationPage, error)
	MarkRead(ctx context.Context, id int) error
}
