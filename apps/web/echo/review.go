package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/review"
)

// registerReviewWeb wires the public review pages and the owner-only
// review-management pages.
func registerReviewWeb(s *server, jwt echo.MiddlewareFunc) {
	// un-authed endpoints
	s.app.GET("/movies/:id/reviews", s.movieReviews)
	s.app.GET("/users/:id/review/:rid", s.reviewDetail)

	// owner-only endpoints
	og := s.app.Group("/users/:id", jwt, s.ownerMiddleware())
	og.GET("/reviews", s.myReviews)
	og.GET("/movies/:mid/reviews/add", s.addReviewForm)
	og.POST("/movies/:mid/reviews/add", s.addReview)
	og.GET("/reviews/:rid/edit", s.editReviewForm)
	og.POST("/reviews/:rid/edit", s.editReview)
	og.POST("/reviews/:rid/delete", s.deleteReview)
}

type movieReviewsData struct {
	Movie   movie.Movie
	Reviews []review.Detail
}

func (s *server) movieReviews(ctx echo.Context) error {
	movieID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	mov, err := s.deps.MovieSvc.GetByID(ctx.Request().Context(), movieID)
	if err != nil {
		if errors.Cause(err) == movie.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding movie by ID")
	}
	reviews, err := s.deps.ReviewSvc.QueryForMovie(ctx.Request().Context(), mov.ID)
	if err != nil {
		return errors.Wrap(err, "querying movie reviews")
	}

	p := s.newPage(ctx, "Reviews of "+mov.Title)
	p.Data = movieReviewsData{Movie: mov, Reviews: reviews}
	return ctx.Render(http.StatusOK, "movie_reviews", p)
}

func (s *server) reviewDetail(ctx echo.Context) error {
	userID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	reviewID, err := paramID(ctx, "rid")
	if err != nil {
		return err
	}

	det, err := s.deps.ReviewSvc.GetDetail(ctx.Request().Context(), reviewID)
	if err != nil {
		if errors.Cause(err) == review.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding review detail")
	}
	if det.UserID != userID {
		return errHttpNotFound
	}

	p := s.newPage(ctx, det.Title)
	p.Data = det
	return ctx.Render(http.StatusOK, "review_detail", p)
}

func (s *server) myReviews(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	reviews, err := s.deps.ReviewSvc.QueryByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying user reviews")
	}

	p := s.newPage(ctx, "My Reviews")
	p.Data = reviews
	return ctx.Render(http.StatusOK, "user_reviews", p)
}

func (s *server) addReviewForm(ctx echo.Context) error {
	mov, err := s.getListedMovie(ctx)
	if err != nil {
		return err
	}
	p := s.newPage(ctx, "Review "+mov.Title)
	p.Form = &review.NewReview{}
	p.Data = mov
	return ctx.Render(http.StatusOK, "add_review", p)
}

func (s *server) addReview(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	mov, err := s.getListedMovie(ctx)
	if err != nil {
		return err
	}

	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Review "+mov.Title)
			p.Form = &data
			p.Errors = fldErrs
			p.Data = mov
			return ctx.Render(http.StatusBadRequest, "add_review", p)
		}
		return err
	}

	rev, err := s.deps.ReviewSvc.Create(ctx.Request().Context(), usr.ID, mov.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}

	s.addFlash(ctx, fmt.Sprintf("Your review of %q has been published.", mov.Title))
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%d/review/%d", usr.ID, rev.ID))
}

func (s *server) editReviewForm(ctx echo.Context) error {
	det, err := s.getOwnReview(ctx)
	if err != nil {
		return err
	}
	p := s.newPage(ctx, "Edit Review")
	p.Form = &review.NewReview{
		Title:  det.Title,
		Text:   det.Text,
		Rating: fmt.Sprintf("%.1f", det.Rating),
	}
	p.Data = det
	return ctx.Render(http.StatusOK, "edit_review", p)
}

func (s *server) editReview(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	det, err := s.getOwnReview(ctx)
	if err != nil {
		return err
	}

	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Edit Review")
			p.Form = &data
			p.Errors = fldErrs
			p.Data = det
			return ctx.Render(http.StatusBadRequest, "edit_review", p)
		}
		return err
	}

	rev, err := s.deps.ReviewSvc.Update(ctx.Request().Context(), det.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating review")
	}

	s.addFlash(ctx, "Your review has been updated.")
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%d/review/%d", usr.ID, rev.ID))
}

func (s *server) deleteReview(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	det, err := s.getOwnReview(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.ReviewSvc.Delete(ctx.Request().Context(), det.ID); err != nil {
		return errors.Wrap(err, "deleting review")
	}

	s.addFlash(ctx, "Your review has been deleted.")
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/users/%d/reviews", usr.ID))
}

// getOwnReview resolves the :rid param to a review written by the owner.
// Other users' reviews 404.
func (s *server) getOwnReview(ctx echo.Context) (review.Detail, error) {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return review.Detail{}, err
	}
	reviewID, err := paramID(ctx, "rid")
	if err != nil {
		return review.Detail{}, err
	}

	det, err := s.deps.ReviewSvc.GetDetail(ctx.Request().Context(), reviewID)
	if err != nil {
		if errors.Cause(err) == review.ErrNotFound {
			return review.Detail{}, errHttpNotFound
		}
		return review.Detail{}, errors.Wrap(err, "finding review detail")
	}
	if det.UserID != usr.ID {
		return review.Detail{}, errHttpNotFound
	}
	return det, nil
}
