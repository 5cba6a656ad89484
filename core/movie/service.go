package movie

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound     = errors.New("movie not found")
	ErrLinkNotFound = errors.New("movie is not on this user's list")
	// ErrNoMatch is returned when the metadata API knows no such movie.
	ErrNoMatch = errors.New("no movie found")
)

type (
	Repository interface {
		CreateMovie(ctx context.Context, mov Movie) (Movie, error)
		GetMovieByID(ctx context.Context, id int64) (Movie, error)
		GetMovieByTitleYear(ctx context.Context, title string, year null.Int) (Movie, error)
		QueryAllMovies(ctx context.Context) ([]Movie, error)
		QueryMoviesByUser(ctx context.Context, userID int64) ([]Movie, error)
		GetLink(ctx context.Context, userID, movieID int64) (Link, error)
		CreateLink(ctx context.Context, link Link) (Link, error)
		UpdateLink(ctx context.Context, link Link) (Link, error)
		UpdateMovie(ctx context.Context, mov Movie) (Movie, error)
		DeleteMoviesByID(ctx context.Context, ids ...int64) error
		CountMovies(ctx context.Context) (int, error)
	}

	Service interface {
		// AddToList looks the movie up, dedupes it on (title, year) and
		// links it to the user's list, OR-merging the flags into an
		// existing link.
		AddToList(ctx context.Context, userID int64, nm NewMovie) (Movie, error)
		GetByID(ctx context.Context, id int64) (Movie, error)
		GetLink(ctx context.Context, userID, movieID int64) (Link, error)
		QueryAll(ctx context.Context) ([]Movie, error)
		QueryByUser(ctx context.Context, userID int64) ([]Movie, error)
		Update(ctx context.Context, id int64, um UpdateMovie) (Movie, error)
		Delete(ctx context.Context, ids ...int64) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo   Repository
		client InfoClient
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, client InfoClient) Service {
	return &service{
		repo:   repo,
		client: client,
	}
}

func (svc *service) AddToList(ctx context.Context, userID int64, nm NewMovie) (Movie, error) {
	info, err := svc.client.Fetch(ctx, nm.Title, nm.Year)
	if err != nil {
		return Movie{}, errors.Wrap(err, "fetching movie info")
	}
	if info == nil {
		return Movie{}, ErrNoMatch
	}

	mov, err := svc.repo.GetMovieByTitleYear(ctx, info.Title, info.Year)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Movie{}, err
		}
		mov, err = svc.repo.CreateMovie(ctx, Movie{
			Title:      info.Title,
			Director:   info.Director,
			Year:       info.Year,
			Genre:      info.Genre,
			PosterURL:  info.PosterURL,
			IMDBRating: info.IMDBRating,
		})
		if err != nil {
			return Movie{}, err
		}
	}

	link, err := svc.repo.GetLink(ctx, userID, mov.ID)
	if err != nil {
		if errors.Cause(err) != ErrLinkNotFound {
			return Movie{}, err
		}
		_, err = svc.repo.CreateLink(ctx, Link{
			UserID:     userID,
			MovieID:    mov.ID,
			IsPlanned:  nm.Planned,
			IsWatched:  nm.Watched,
			IsFavorite: nm.Favorite,
		})
		if err != nil {
			return Movie{}, err
		}
		return mov, nil
	}

	link.IsPlanned = link.IsPlanned || nm.Planned
	link.IsWatched = link.IsWatched || nm.Watched
	link.IsFavorite = link.IsFavorite || nm.Favorite
	if _, err = svc.repo.UpdateLink(ctx, link); err != nil {
		return Movie{}, err
	}
	return mov, nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (Movie, error) {
	return svc.repo.GetMovieByID(ctx, id)
}

func (svc *service) GetLink(ctx context.Context, userID, movieID int64) (Link, error) {
	return svc.repo.GetLink(ctx, userID, movieID)
}

func (svc *service) QueryAll(ctx context.Context) ([]Movie, error) {
	return svc.repo.QueryAllMovies(ctx)
}

func (svc *service) QueryByUser(ctx context.Context, userID int64) ([]Movie, error) {
	return svc.repo.QueryMoviesByUser(ctx, userID)
}

func (svc *service) Update(ctx context.Context, id int64, um UpdateMovie) (Movie, error) {
	mov, err := svc.repo.GetMovieByID(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	return svc.repo.UpdateMovie(ctx, um.Apply(mov))
}

func (svc *service) Delete(ctx context.Context, ids ...int64) error {
	return svc.repo.DeleteMoviesByID(ctx, ids...)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountMovies(ctx)
}
