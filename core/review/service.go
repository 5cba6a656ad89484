package review

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("review not found")

type (
	Repository interface {
		CreateReview(ctx context.Context, rev Review) (Review, error)
		GetReviewByID(ctx context.Context, id int64) (Review, error)
		// GetReviewDetail joins the review with its movie and author.
		GetReviewDetail(ctx context.Context, id int64) (Detail, error)
		QueryReviewsByUser(ctx context.Context, userID int64) ([]Detail, error)
		QueryReviewsForMovie(ctx context.Context, movieID int64) ([]Detail, error)
		UpdateReview(ctx context.Context, rev Review) (Review, error)
		DeleteReviewsByID(ctx context.Context, ids ...int64) error
		CountReviews(ctx context.Context) (int, error)
	}

	Service interface {
		Create(ctx context.Context, userID, movieID int64, nr NewReview) (Review, error)
		GetByID(ctx context.Context, id int64) (Review, error)
		GetDetail(ctx context.Context, id int64) (Detail, error)
		QueryByUser(ctx context.Context, userID int64) ([]Detail, error)
		QueryForMovie(ctx context.Context, movieID int64) ([]Detail, error)
		Update(ctx context.Context, id int64, nr NewReview) (Review, error)
		Delete(ctx context.Context, ids ...int64) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, userID, movieID int64, nr NewReview) (Review, error) {
	return svc.repo.CreateReview(ctx, Review{
		UserID:  userID,
		MovieID: movieID,
		Title:   nr.Title,
		Text:    nr.Text,
		Rating:  nr.RatingValue(),
	})
}

func (svc *service) GetByID(ctx context.Context, id int64) (Review, error) {
	return svc.repo.GetReviewByID(ctx, id)
}

func (svc *service) GetDetail(ctx context.Context, id int64) (Detail, error) {
	return svc.repo.GetReviewDetail(ctx, id)
}

func (svc *service) QueryByUser(ctx context.Context, userID int64) ([]Detail, error) {
	return svc.repo.QueryReviewsByUser(ctx, userID)
}

func (svc *service) QueryForMovie(ctx context.Context, movieID int64) ([]Detail, error) {
	return svc.repo.QueryReviewsForMovie(ctx, movieID)
}

func (svc *service) Update(ctx context.Context, id int64, nr NewReview) (Review, error) {
	rev, err := svc.repo.GetReviewByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	rev.Title = nr.Title
	rev.Text = nr.Text
	rev.Rating = nr.RatingValue()
	return svc.repo.UpdateReview(ctx, rev)
}

func (svc *service) Delete(ctx context.Context, ids ...int64) error {
	return svc.repo.DeleteReviewsByID(ctx, ids...)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountReviews(ctx)
}
