package dummydb

import (
	"sync"

	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/review"
	"github.com/kymoh/moviematrix/core/user"
)

type (
	DB struct {
		sync.RWMutex
		users   map[int64]*user.User
		movies  map[int64]*movie.Movie
		links   map[int64]*movie.Link
		reviews map[int64]*review.Review
		pk      map[string]int64
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:   make(map[int64]*user.User),
		movies:  make(map[int64]*movie.Movie),
		links:   make(map[int64]*movie.Link),
		reviews: make(map[int64]*review.Review),
		pk:      make(map[string]int64),
	}
	return db, nil
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int64 {
	db.pk[table]++
	return db.pk[table]
}
