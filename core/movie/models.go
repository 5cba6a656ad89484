package movie

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core"
)

type Movie struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Director   null.String  `json:"director,omitempty"`
	Year       null.Int     `json:"year,omitempty"`
	Genre      null.String  `json:"genre,omitempty"`
	PosterURL  null.String  `json:"poster_url,omitempty"`
	IMDBRating null.Float64 `json:"imdb_rating,omitempty"`
}

// Link ties a Movie to a User's list with its watch-state flags.
type Link struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	MovieID    int64 `json:"movie_id"`
	IsWatched  bool  `json:"is_watched"`
	IsPlanned  bool  `json:"is_planned"`
	IsFavorite bool  `json:"is_favorite"`
}

// Info is the metadata returned by the movie lookup API.
type Info struct {
	Title      string
	Director   null.String
	Year       null.Int
	Genre      null.String
	PosterURL  null.String
	IMDBRating null.Float64
}

// InfoClient is the movie-metadata lookup API (treated as a black box).
// A miss returns (nil, nil).
type InfoClient interface {
	Fetch(ctx context.Context, title, year string) (*Info, error)
}

// NewMovie contains the add-movie form data: a lookup query plus list flags.
type NewMovie struct {
	Title    string `form:"title" validate:"required"`
	Year     string `form:"year" validate:"omitempty,year"`
	Planned  bool   `form:"planned"`
	Watched  bool   `form:"watched"`
	Favorite bool   `form:"favorite"`
}

func (nm *NewMovie) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Year = core.CleanString(nm.Year)
	return validate.Struct(nm)
}

// UpdateMovie defines which metadata fields may be edited.
// Blank fields keep the stored values.
type UpdateMovie struct {
	Title      string `form:"title"`
	Director   string `form:"director"`
	Year       string `form:"year" validate:"omitempty,year"`
	Genre      string `form:"genre"`
	IMDBRating string `form:"imdb_rating" validate:"omitempty,rating"`
}

func (um *UpdateMovie) Validate(validate *validator.Validate) error {
	um.Title = core.CleanString(um.Title)
	um.Director = core.CleanString(um.Director)
	um.Year = core.CleanString(um.Year)
	um.Genre = core.CleanString(um.Genre)
	um.IMDBRating = core.CleanString(um.IMDBRating)
	return validate.Struct(um)
}

// Apply merges the non-blank form fields into the stored movie.
func (um *UpdateMovie) Apply(mov Movie) Movie {
	if um.Title != "" {
		mov.Title = um.Title
	}
	if um.Director != "" {
		mov.Director.SetValid(um.Director)
	}
	if um.Year != "" {
		if y, err := strconv.Atoi(um.Year); err == nil {
			mov.Year.SetValid(y)
		}
	}
	if um.Genre != "" {
		mov.Genre.SetValid(um.Genre)
	}
	if um.IMDBRating != "" {
		mov.IMDBRating.SetValid(core.NormalizeRating(um.IMDBRating))
	}
	return mov
}
