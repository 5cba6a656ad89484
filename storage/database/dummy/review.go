package dummydb

import (
	"context"
	"sort"

	"github.com/kymoh/moviematrix/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

// detail must be called with a read lock held.
func (repo *reviewRepository) detail(rev review.Review) review.Detail {
	det := review.Detail{Review: rev}
	if mov, ok := repo.db.movies[rev.MovieID]; ok {
		det.Movie = *mov
	}
	if usr, ok := repo.db.users[rev.UserID]; ok {
		det.Author = *usr
	}
	return det
}

func (repo *reviewRepository) CreateReview(_ context.Context, rev review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rev.ID = repo.db.nextPK("reviews")
	repo.db.reviews[rev.ID] = &rev
	return rev, nil
}

func (repo *reviewRepository) GetReviewByID(_ context.Context, id int64) (review.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rev, ok := repo.db.reviews[id]; ok {
		return *rev, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) GetReviewDetail(_ context.Context, id int64) (review.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rev, ok := repo.db.reviews[id]; ok {
		return repo.detail(*rev), nil
	}
	return review.Detail{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryReviewsByUser(_ context.Context, userID int64) ([]review.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var details []review.Detail
	for _, rev := range repo.db.reviews {
		if rev.UserID == userID {
			details = append(details, repo.detail(*rev))
		}
	}
	sortDetails(details)
	return details, nil
}

func (repo *reviewRepository) QueryReviewsForMovie(_ context.Context, movieID int64) ([]review.Detail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var details []review.Detail
	for _, rev := range repo.db.reviews {
		if rev.MovieID == movieID {
			details = append(details, repo.detail(*rev))
		}
	}
	sortDetails(details)
	return details, nil
}

func (repo *reviewRepository) UpdateReview(_ context.Context, rev review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.reviews[rev.ID]; !ok {
		return review.Review{}, review.ErrNotFound
	}
	repo.db.reviews[rev.ID] = &rev
	return rev, nil
}

func (repo *reviewRepository) DeleteReviewsByID(_ context.Context, ids ...int64) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.reviews, id)
	}
	return nil
}

func (repo *reviewRepository) CountReviews(_ context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.reviews), nil
}

// newest first
func sortDetails(details []review.Detail) {
	sort.Slice(details, func(i, j int) bool { return details[i].ID > details[j].ID })
}
