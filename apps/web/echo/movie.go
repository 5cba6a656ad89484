package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core/movie"
)

// registerMovieWeb wires the public catalogue and the owner-only
// list-management pages.
func registerMovieWeb(s *server, jwt echo.MiddlewareFunc) {
	// un-authed endpoints
	s.app.GET("/movies", s.listMovies)

	// owner-only endpoints
	og := s.app.Group("/users/:id/movies", jwt, s.ownerMiddleware())
	og.GET("/add", s.addMovieForm)
	og.POST("/add", s.addMovie)
	og.GET("/:mid/edit", s.editMovieForm)
	og.POST("/:mid/edit", s.editMovie)
	og.POST("/:mid/delete", s.deleteMovie)
}

func (s *server) listMovies(ctx echo.Context) error {
	movies, err := s.deps.MovieSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying movies")
	}
	p := s.newPage(ctx, "All Movies")
	p.Data = movies
	return ctx.Render(http.StatusOK, "all_movies", p)
}

func (s *server) addMovieForm(ctx echo.Context) error {
	p := s.newPage(ctx, "Add a Movie")
	p.Form = &movie.NewMovie{}
	return ctx.Render(http.StatusOK, "add_movie", p)
}

func (s *server) addMovie(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}

	var data movie.NewMovie
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMovie")
	}

	renderErr := func(fldErrs map[string]string) error {
		p := s.newPage(ctx, "Add a Movie")
		p.Form = &data
		p.Errors = fldErrs
		return ctx.Render(http.StatusBadRequest, "add_movie", p)
	}

	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return renderErr(fldErrs)
		}
		return err
	}

	mov, err := s.deps.MovieSvc.AddToList(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		if errors.Cause(err) == movie.ErrNoMatch {
			return renderErr(map[string]string{"title": "No movie matched this title. Check the spelling and try again."})
		}
		return errors.Wrap(err, "adding movie to list")
	}

	s.addFlash(ctx, fmt.Sprintf("%q is now on your list.", mov.Title))
	return redirectToProfile(ctx, usr)
}

func (s *server) editMovieForm(ctx echo.Context) error {
	mov, err := s.getListedMovie(ctx)
	if err != nil {
		return err
	}

	form := &movie.UpdateMovie{
		Title:    mov.Title,
		Director: mov.Director.String,
		Genre:    mov.Genre.String,
	}
	if mov.Year.Valid {
		form.Year = fmt.Sprintf("%d", mov.Year.Int)
	}
	if mov.IMDBRating.Valid {
		form.IMDBRating = fmt.Sprintf("%.1f", mov.IMDBRating.Float64)
	}

	p := s.newPage(ctx, "Edit "+mov.Title)
	p.Form = form
	p.Data = mov
	return ctx.Render(http.StatusOK, "edit_movie", p)
}

func (s *server) editMovie(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	mov, err := s.getListedMovie(ctx)
	if err != nil {
		return err
	}

	var data movie.UpdateMovie
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMovie")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			p := s.newPage(ctx, "Edit "+mov.Title)
			p.Form = &data
			p.Errors = fldErrs
			p.Data = mov
			return ctx.Render(http.StatusBadRequest, "edit_movie", p)
		}
		return err
	}

	mov, err = s.deps.MovieSvc.Update(ctx.Request().Context(), mov.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating movie")
	}

	s.addFlash(ctx, fmt.Sprintf("%q has been updated.", mov.Title))
	return redirectToProfile(ctx, usr)
}

func (s *server) deleteMovie(ctx echo.Context) error {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return err
	}
	mov, err := s.getListedMovie(ctx)
	if err != nil {
		return err
	}
	if err = s.deps.MovieSvc.Delete(ctx.Request().Context(), mov.ID); err != nil {
		return errors.Wrap(err, "deleting movie")
	}

	s.addFlash(ctx, fmt.Sprintf("%q has been deleted.", mov.Title))
	return redirectToProfile(ctx, usr)
}

// getListedMovie resolves the :mid param to a movie on the owner's list.
// Movies the owner never added 404.
func (s *server) getListedMovie(ctx echo.Context) (movie.Movie, error) {
	usr, err := s.getContextUser(ctx)
	if err != nil {
		return movie.Movie{}, err
	}
	movieID, err := paramID(ctx, "mid")
	if err != nil {
		return movie.Movie{}, err
	}

	if _, err = s.deps.MovieSvc.GetLink(ctx.Request().Context(), usr.ID, movieID); err != nil {
		if errors.Cause(err) == movie.ErrLinkNotFound {
			return movie.Movie{}, errHttpNotFound
		}
		return movie.Movie{}, errors.Wrap(err, "finding user movie link")
	}

	mov, err := s.deps.MovieSvc.GetByID(ctx.Request().Context(), movieID)
	if err != nil {
		if errors.Cause(err) == movie.ErrNotFound {
			return movie.Movie{}, errHttpNotFound
		}
		return movie.Movie{}, errors.Wrap(err, "finding movie by ID")
	}
	return mov, nil
}
