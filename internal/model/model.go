package model

import (
	"strings"
	"time"
)

// TokenPair is the access/refresh pair handed out at login. Both tokens are
// opaque to the client and persisted under fixed storage keys.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type User struct {
	ID             int    `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	IsLibrarian    bool   `json:"is_librarian"`
	ProfilePicture string `json:"profile_picture"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Book mirrors the server's projection. borrowed_by/due_date are absent when
// the book is on the shelf; overdue_fee is never negative.
type Book struct {
	ISBN          string  `json:"isbn"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedDate Date    `json:"published_date"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	PDF           string  `json:"pdf"`
	BorrowedBy    string  `json:"borrowed_by"`
	DueDate       *Date   `json:"due_date"`
	OverdueFee    float64 `json:"overdue_fee"`
}

func (b Book) Available() bool {
	return b.BorrowedBy == ""
}

func (b Book) Overdue() bool {
	return b.DueDate != nil && time.Now().After(b.DueDate.Time)
}

// Date unmarshals the API's yyyy-mm-dd date-only strings.
type Date struct {
	time.Time `json:",inline"`
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		return nil
	}
	date, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = date
	return
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Notification struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link"`
	IsRead  bool   `json:"is_read"`
}

// BookPage is the server's paginated book listing.
type BookPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Book  `json:"results"`
}

type NotificationPage struct {
	Count   int            `json:"count"`
	Results []Notification `json:"results"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// GoogleLoginResponse uses different token field names than password login.
type GoogleLoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

// BookUpload is the librarian create/update form. Image and PDF are local
// file paths attached to the multipart body when present.
type BookUpload struct {
	ISBN          string `validate:"required"`
	Title         string `validate:"required"`
	Author        string `validate:"required"`
	PublishedDate string `validate:"required,datetime=2006-01-02"`
	Description   string
	Category      string
	ImagePath     string
	PDFPath       string
}

// ProfileUpdate carries the editable profile fields; PicturePath is a local
// file attached as profile_picture.
type ProfileUpdate struct {
	FirstName   string `validate:"required"`
	LastName    string `validate:"required"`
	Email       string `validate:"required,email"`
	PicturePath string
}

type PayFeeRequest struct {
	ISBN   string  `json:"isbn" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type FavoriteStatus struct {
	IsFavorite bool `json:"is_favorite"`
}
