package sqliterepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core/movie"
)

type movieRow struct {
	ID         int64        `db:"id"`
	Title      string       `db:"title"`
	Director   null.String  `db:"director"`
	Year       null.Int     `db:"year"`
	Genre      null.String  `db:"genre"`
	PosterURL  null.String  `db:"poster_url"`
	IMDBRating null.Float64 `db:"imdb_rating"`
}

func toMovieRow(mov movie.Movie) movieRow {
	return movieRow{
		ID:         mov.ID,
		Title:      mov.Title,
		Director:   mov.Director,
		Year:       mov.Year,
		Genre:      mov.Genre,
		PosterURL:  mov.PosterURL,
		IMDBRating: mov.IMDBRating,
	}
}

func fromMovieRow(row movieRow) movie.Movie {
	return movie.Movie{
		ID:         row.ID,
		Title:      row.Title,
		Director:   row.Director,
		Year:       row.Year,
		Genre:      row.Genre,
		PosterURL:  row.PosterURL,
		IMDBRating: row.IMDBRating,
	}
}

type linkRow struct {
	ID         int64 `db:"id"`
	UserID     int64 `db:"user_id"`
	MovieID    int64 `db:"movie_id"`
	IsWatched  bool  `db:"is_watched"`
	IsPlanned  bool  `db:"is_planned"`
	IsFavorite bool  `db:"is_favorite"`
}

func fromLinkRow(row linkRow) movie.Link {
	return movie.Link(row)
}

type movieRepository struct {
	db *sqlx.DB
}

var _ movie.Repository = (*movieRepository)(nil) // interface compliance check

func NewMovieRepository(db *sqlx.DB) movie.Repository {
	return &movieRepository{db: db}
}

func (repo *movieRepository) CreateMovie(ctx context.Context, mov movie.Movie) (movie.Movie, error) {
	row := toMovieRow(mov)
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO movies (title, director, year, genre, poster_url, imdb_rating)
		VALUES (:title, :director, :year, :genre, :poster_url, :imdb_rating)`, row)
	if err != nil {
		return movie.Movie{}, errors.Wrap(err, "inserting movie")
	}
	if mov.ID, err = res.LastInsertId(); err != nil {
		return movie.Movie{}, errors.Wrap(err, "inserting movie")
	}
	return mov, nil
}

func (repo *movieRepository) GetMovieByID(ctx context.Context, id int64) (movie.Movie, error) {
	var row movieRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM movies WHERE id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return movie.Movie{}, movie.ErrNotFound
		}
		return movie.Movie{}, errors.Wrap(err, "finding movie by ID")
	}
	return fromMovieRow(row), nil
}

func (repo *movieRepository) GetMovieByTitleYear(ctx context.Context, title string, year null.Int) (movie.Movie, error) {
	var row movieRow
	var err error
	if year.Valid {
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM movies WHERE title = ? AND year = ?`, title, year.Int)
	} else {
		err = repo.db.GetContext(ctx, &row, `SELECT * FROM movies WHERE title = ? AND year IS NULL`, title)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return movie.Movie{}, movie.ErrNotFound
		}
		return movie.Movie{}, errors.Wrap(err, "finding movie by title and year")
	}
	return fromMovieRow(row), nil
}

func (repo *movieRepository) QueryAllMovies(ctx context.Context) ([]movie.Movie, error) {
	var rows []movieRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM movies ORDER BY title`)
	if err != nil {
		return nil, errors.Wrap(err, "querying movies")
	}
	return fromMovieRows(rows), nil
}

func (repo *movieRepository) QueryMoviesByUser(ctx context.Context, userID int64) ([]movie.Movie, error) {
	var rows []movieRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT m.* FROM movies m
		JOIN user_movies um ON um.movie_id = m.id
		WHERE um.user_id = ?
		ORDER BY m.title`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user movies")
	}
	return fromMovieRows(rows), nil
}

func (repo *movieRepository) GetLink(ctx context.Context, userID, movieID int64) (movie.Link, error) {
	var row linkRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM user_movies WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		if err == sql.ErrNoRows {
			return movie.Link{}, movie.ErrLinkNotFound
		}
		return movie.Link{}, errors.Wrap(err, "finding user movie link")
	}
	return fromLinkRow(row), nil
}

func (repo *movieRepository) CreateLink(ctx context.Context, link movie.Link) (movie.Link, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO user_movies (user_id, movie_id, is_watched, is_planned, is_favorite)
		VALUES (:user_id, :movie_id, :is_watched, :is_planned, :is_favorite)`, linkRow(link))
	if err != nil {
		return movie.Link{}, errors.Wrap(err, "inserting user movie link")
	}
	if link.ID, err = res.LastInsertId(); err != nil {
		return movie.Link{}, errors.Wrap(err, "inserting user movie link")
	}
	return link, nil
}

func (repo *movieRepository) UpdateLink(ctx context.Context, link movie.Link) (movie.Link, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE user_movies
		SET is_watched = :is_watched, is_planned = :is_planned, is_favorite = :is_favorite
		WHERE id = :id`, linkRow(link))
	if err != nil {
		return movie.Link{}, errors.Wrap(err, "updating user movie link")
	}
	return link, nil
}

func (repo *movieRepository) UpdateMovie(ctx context.Context, mov movie.Movie) (movie.Movie, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE movies
		SET title = :title, director = :director, year = :year, genre = :genre,
			poster_url = :poster_url, imdb_rating = :imdb_rating
		WHERE id = :id`, toMovieRow(mov))
	if err != nil {
		return movie.Movie{}, errors.Wrap(err, "updating movie")
	}
	return mov, nil
}

func (repo *movieRepository) DeleteMoviesByID(ctx context.Context, ids ...int64) error {
	q, args, err := sqlx.In(`DELETE FROM movies WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting movies")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting movies")
	}
	return nil
}

func (repo *movieRepository) CountMovies(ctx context.Context) (int, error) {
	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, `SELECT COUNT(*) FROM movies`); err != nil {
		return 0, errors.Wrap(err, "counting movies")
	}
	return cnt, nil
}

func fromMovieRows(rows []movieRow) []movie.Movie {
	movies := make([]movie.Movie, 0, len(rows))
	for _, row := range rows {
		movies = append(movies, fromMovieRow(row))
	}
	return movies
}
