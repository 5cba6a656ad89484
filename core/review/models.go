package review

import (
	"github.com/go-playground/validator/v10"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/user"
)

type Review struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"user_id"`
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Text    string  `json:"text"`
	Rating  float64 `json:"user_rating"`
}

// Detail is a Review joined with its movie and author for display.
type Detail struct {
	Review
	Movie  movie.Movie `json:"movie"`
	Author user.User   `json:"author"`
}

// NewReview contains the add/edit review form data.
type NewReview struct {
	Title  string `form:"title" validate:"required"`
	Text   string `form:"text" validate:"required"`
	Rating string `form:"user_rating" validate:"required,rating"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Text = core.CleanString(nr.Text)
	nr.Rating = core.CleanString(nr.Rating)
	return validate.Struct(nr)
}

func (nr *NewReview) RatingValue() float64 {
	return core.NormalizeRating(nr.Rating)
}
