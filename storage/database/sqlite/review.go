package sqliterepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core/review"
)

type reviewRow struct {
	ID      int64   `db:"id"`
	UserID  int64   `db:"user_id"`
	MovieID int64   `db:"movie_id"`
	Title   string  `db:"title"`
	Text    string  `db:"text"`
	Rating  float64 `db:"user_rating"`
}

// detailRow joins a review with its movie and author in one round trip.
type detailRow struct {
	reviewRow
	Movie  movieRow `db:"movie"`
	Author userRow  `db:"author"`
}

const detailQuery = `
	SELECT r.*,
		m.id "movie.id", m.title "movie.title", m.director "movie.director", m.year "movie.year",
		m.genre "movie.genre", m.poster_url "movie.poster_url", m.imdb_rating "movie.imdb_rating",
		u.id "author.id", u.username "author.username", u.email "author.email",
		u.first_name "author.first_name", u.last_name "author.last_name", u.age "author.age",
		u.password_hash "author.password_hash", u.created_at "author.created_at",
		u.updated_at "author.updated_at", u.last_login "author.last_login"
	FROM reviews r
	JOIN movies m ON m.id = r.movie_id
	JOIN users u ON u.id = r.user_id`

func fromReviewRow(row reviewRow) review.Review {
	return review.Review(row)
}

func fromDetailRow(row detailRow) review.Detail {
	return review.Detail{
		Review: fromReviewRow(row.reviewRow),
		Movie:  fromMovieRow(row.Movie),
		Author: fromUserRow(row.Author),
	}
}

func fromDetailRows(rows []detailRow) []review.Detail {
	details := make([]review.Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, fromDetailRow(row))
	}
	return details
}

type reviewRepository struct {
	db *sqlx.DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO reviews (user_id, movie_id, title, text, user_rating)
		VALUES (:user_id, :movie_id, :title, :text, :user_rating)`, reviewRow(rev))
	if err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	if rev.ID, err = res.LastInsertId(); err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return rev, nil
}

func (repo *reviewRepository) GetReviewByID(ctx context.Context, id int64) (review.Review, error) {
	var row reviewRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM reviews WHERE id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return review.Review{}, review.ErrNotFound
		}
		return review.Review{}, errors.Wrap(err, "finding review by ID")
	}
	return fromReviewRow(row), nil
}

func (repo *reviewRepository) GetReviewDetail(ctx context.Context, id int64) (review.Detail, error) {
	var row detailRow
	if err := repo.db.GetContext(ctx, &row, detailQuery+` WHERE r.id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return review.Detail{}, review.ErrNotFound
		}
		return review.Detail{}, errors.Wrap(err, "finding review detail")
	}
	return fromDetailRow(row), nil
}

func (repo *reviewRepository) QueryReviewsByUser(ctx context.Context, userID int64) ([]review.Detail, error) {
	var rows []detailRow
	err := repo.db.SelectContext(ctx, &rows, detailQuery+` WHERE r.user_id = ? ORDER BY r.id DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user reviews")
	}
	return fromDetailRows(rows), nil
}

func (repo *reviewRepository) QueryReviewsForMovie(ctx context.Context, movieID int64) ([]review.Detail, error) {
	var rows []detailRow
	err := repo.db.SelectContext(ctx, &rows, detailQuery+` WHERE r.movie_id = ? ORDER BY r.id DESC`, movieID)
	if err != nil {
		return nil, errors.Wrap(err, "querying movie reviews")
	}
	return fromDetailRows(rows), nil
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE reviews
		SET title = :title, text = :text, user_rating = :user_rating
		WHERE id = :id`, reviewRow(rev))
	if err != nil {
		return review.Review{}, errors.Wrap(err, "updating review")
	}
	return rev, nil
}

func (repo *reviewRepository) DeleteReviewsByID(ctx context.Context, ids ...int64) error {
	q, args, err := sqlx.In(`DELETE FROM reviews WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting reviews")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting reviews")
	}
	return nil
}

func (repo *reviewRepository) CountReviews(ctx context.Context) (int, error) {
	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, `SELECT COUNT(*) FROM reviews`); err != nil {
		return 0, errors.Wrap(err, "counting reviews")
	}
	return cnt, nil
}
