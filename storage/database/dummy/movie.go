package dummydb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core/movie"
)

type movieRepository struct {
	db *DB
}

var _ movie.Repository = (*movieRepository)(nil) // interface compliance check

func NewMovieRepository(db *DB) movie.Repository {
	return &movieRepository{db: db}
}

func (repo *movieRepository) CreateMovie(_ context.Context, mov movie.Movie) (movie.Movie, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mov.ID = repo.db.nextPK("movies")
	repo.db.movies[mov.ID] = &mov
	return mov, nil
}

func (repo *movieRepository) GetMovieByID(_ context.Context, id int64) (movie.Movie, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mov, ok := repo.db.movies[id]; ok {
		return *mov, nil
	}
	return movie.Movie{}, movie.ErrNotFound
}

func (repo *movieRepository) GetMovieByTitleYear(_ context.Context, title string, year null.Int) (movie.Movie, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, mov := range repo.db.movies {
		if mov.Title == title && mov.Year == year {
			return *mov, nil
		}
	}
	return movie.Movie{}, movie.ErrNotFound
}

func (repo *movieRepository) QueryAllMovies(_ context.Context) ([]movie.Movie, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	movies := make([]movie.Movie, 0, len(repo.db.movies))
	for _, mov := range repo.db.movies {
		movies = append(movies, *mov)
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].Title < movies[j].Title })
	return movies, nil
}

func (repo *movieRepository) QueryMoviesByUser(_ context.Context, userID int64) ([]movie.Movie, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var movies []movie.Movie
	for _, link := range repo.db.links {
		if link.UserID != userID {
			continue
		}
		if mov, ok := repo.db.movies[link.MovieID]; ok {
			movies = append(movies, *mov)
		}
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].Title < movies[j].Title })
	return movies, nil
}

func (repo *movieRepository) GetLink(_ context.Context, userID, movieID int64) (movie.Link, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, link := range repo.db.links {
		if link.UserID == userID && link.MovieID == movieID {
			return *link, nil
		}
	}
	return movie.Link{}, movie.ErrLinkNotFound
}

func (repo *movieRepository) CreateLink(_ context.Context, link movie.Link) (movie.Link, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	link.ID = repo.db.nextPK("user_movies")
	repo.db.links[link.ID] = &link
	return link, nil
}

func (repo *movieRepository) UpdateLink(_ context.Context, link movie.Link) (movie.Link, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.links[link.ID]; !ok {
		return movie.Link{}, movie.ErrLinkNotFound
	}
	repo.db.links[link.ID] = &link
	return link, nil
}

func (repo *movieRepository) UpdateMovie(_ context.Context, mov movie.Movie) (movie.Movie, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.movies[mov.ID]; !ok {
		return movie.Movie{}, movie.ErrNotFound
	}
	repo.db.movies[mov.ID] = &mov
	return mov, nil
}

func (repo *movieRepository) DeleteMoviesByID(_ context.Context, ids ...int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.movies, id)
		// emulate ON DELETE CASCADE
		for lid, link := range repo.db.links {
			if link.MovieID == id {
				delete(repo.db.links, lid)
			}
		}
		for rid, rev := range repo.db.reviews {
			if rev.MovieID == id {
				delete(repo.db.reviews, rid)
			}
		}
	}
	return nil
}

func (repo *movieRepository) CountMovies(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.movies), nil
}
