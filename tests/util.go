package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/review"
	"github.com/kymoh/moviematrix/core/user"
)

// NewConfig returns a self-contained test configuration; nothing is read
// from the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:                     true,
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "MovieMatrix",
		SecretKey:                 "secret",
		BaseURL:                   "http://localhost:8080",
		DefaultFromEmail:          mail.Address{Name: "MovieMatrix", Address: "noreply@localhost"},
		SessionExpirationDelta:    10 * time.Minute,
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Host:            "localhost:0",
			DebugHost:       "localhost:0",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: core.DatabaseConfig{Name: ":memory:"},
	}
}

// NewValidator returns a validator with all custom validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, email, firstName, pwd string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		FirstName: firstName,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMovie(t *testing.T, repo movie.Repository, mov movie.Movie) movie.Movie {
	t.Helper()

	mov, err := repo.CreateMovie(context.Background(), mov)
	if err != nil {
		t.Fatalf("CreateMovie() failed: %v", err)
	}
	return mov
}

func LinkMovie(t *testing.T, repo movie.Repository, userID, movieID int64, watched, planned, favorite bool) movie.Link {
	t.Helper()

	link, err := repo.CreateLink(context.Background(), movie.Link{
		UserID:     userID,
		MovieID:    movieID,
		IsWatched:  watched,
		IsPlanned:  planned,
		IsFavorite: favorite,
	})
	if err != nil {
		t.Fatalf("LinkMovie() failed: %v", err)
	}
	return link
}

func CreateReview(t *testing.T, repo review.Repository, userID, movieID int64, title, text string, rating float64) review.Review {
	t.Helper()

	rev, err := repo.CreateReview(context.Background(), review.Review{
		UserID:  userID,
		MovieID: movieID,
		Title:   title,
		Text:    text,
		Rating:  rating,
	})
	if err != nil {
		t.Fatalf("CreateReview() failed: %v", err)
	}
	return rev
}
