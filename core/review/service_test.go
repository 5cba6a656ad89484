package review_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/review"
	"github.com/kymoh/moviematrix/core/user"
	dummydb "github.com/kymoh/moviematrix/storage/database/dummy"
	"github.com/kymoh/moviematrix/tests"
)

type testFixture struct {
	svc     review.Service
	repo    review.Repository
	usr     user.User
	mov     movie.Movie
	usrRepo user.Repository
	movRepo movie.Repository
}

func newTestFixture(t *testing.T) testFixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	repo := dummydb.NewReviewRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	movRepo := dummydb.NewMovieRepository(db)
	return testFixture{
		svc:     review.NewService(repo),
		repo:    repo,
		usr:     testutil.CreateUser(t, usrRepo, "jdoe", "jdoe@test.cd", "John", ""),
		mov:     testutil.CreateMovie(t, movRepo, movie.Movie{Title: "Heat", Year: null.IntFrom(1995)}),
		usrRepo: usrRepo,
		movRepo: movRepo,
	}
}

func TestServiceCreate(t *testing.T) {
	fix := newTestFixture(t)
	ctx := context.Background()

	rev, err := fix.svc.Create(ctx, fix.usr.ID, fix.mov.ID, review.NewReview{
		Title:  "A classic",
		Text:   "The diner scene alone is worth it.",
		Rating: "9.5",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if rev.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if rev.Rating != 9.5 {
		t.Errorf("Rating = %v; want 9.5", rev.Rating)
	}

	t.Run("rating is clamped", func(t *testing.T) {
		rev, err := fix.svc.Create(ctx, fix.usr.ID, fix.mov.ID, review.NewReview{
			Title:  "Over the top",
			Text:   "Scale goes to 10.",
			Rating: "15",
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if rev.Rating != 10 {
			t.Errorf("Rating = %v; want 10", rev.Rating)
		}
	})
}

func TestServiceGetDetail(t *testing.T) {
	fix := newTestFixture(t)
	ctx := context.Background()

	rev := testutil.CreateReview(t, fix.repo, fix.usr.ID, fix.mov.ID, "A classic", "Great.", 9)

	det, err := fix.svc.GetDetail(ctx, rev.ID)
	if err != nil {
		t.Fatalf("GetDetail() failed: %v", err)
	}
	if det.Movie.Title != fix.mov.Title {
		t.Errorf("Movie.Title = %q; want %q", det.Movie.Title, fix.mov.Title)
	}
	if det.Author.Username != fix.usr.Username {
		t.Errorf("Author.Username = %q; want %q", det.Author.Username, fix.usr.Username)
	}

	if _, err = fix.svc.GetDetail(ctx, 999); errors.Cause(err) != review.ErrNotFound {
		t.Errorf("GetDetail() error = %v; want %v", err, review.ErrNotFound)
	}
}

func TestServiceQueries(t *testing.T) {
	fix := newTestFixture(t)
	ctx := context.Background()

	other := testutil.CreateUser(t, fix.usrRepo, "janedoe", "janedoe@test.cd", "Jane", "")
	otherMov := testutil.CreateMovie(t, fix.movRepo, movie.Movie{Title: "Alien", Year: null.IntFrom(1979)})

	first := testutil.CreateReview(t, fix.repo, fix.usr.ID, fix.mov.ID, "First", "t", 7)
	second := testutil.CreateReview(t, fix.repo, fix.usr.ID, otherMov.ID, "Second", "t", 8)
	theirs := testutil.CreateReview(t, fix.repo, other.ID, fix.mov.ID, "Theirs", "t", 6)

	t.Run("by user, newest first", func(t *testing.T) {
		dets, err := fix.svc.QueryByUser(ctx, fix.usr.ID)
		if err != nil {
			t.Fatalf("QueryByUser() failed: %v", err)
		}
		if len(dets) != 2 {
			t.Fatalf("QueryByUser() returned %d reviews; want 2", len(dets))
		}
		if dets[0].ID != second.ID || dets[1].ID != first.ID {
			t.Errorf("order = [%d, %d]; want [%d, %d]", dets[0].ID, dets[1].ID, second.ID, first.ID)
		}
	})

	t.Run("for movie, newest first", func(t *testing.T) {
		dets, err := fix.svc.QueryForMovie(ctx, fix.mov.ID)
		if err != nil {
			t.Fatalf("QueryForMovie() failed: %v", err)
		}
		if len(dets) != 2 {
			t.Fatalf("QueryForMovie() returned %d reviews; want 2", len(dets))
		}
		if dets[0].ID != theirs.ID || dets[1].ID != first.ID {
			t.Errorf("order = [%d, %d]; want [%d, %d]", dets[0].ID, dets[1].ID, theirs.ID, first.ID)
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	fix := newTestFixture(t)
	ctx := context.Background()

	rev := testutil.CreateReview(t, fix.repo, fix.usr.ID, fix.mov.ID, "A classic", "Great.", 9)

	updated, err := fix.svc.Update(ctx, rev.ID, review.NewReview{
		Title:  "Still a classic",
		Text:   "Rewatched it; holds up.",
		Rating: "10",
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Title != "Still a classic" || updated.Rating != 10 {
		t.Errorf("Update() = %+v", updated)
	}
	if updated.UserID != fix.usr.ID || updated.MovieID != fix.mov.ID {
		t.Error("Update() changed the review's owner or movie")
	}

	if _, err = fix.svc.Update(ctx, 999, review.NewReview{}); errors.Cause(err) != review.ErrNotFound {
		t.Errorf("Update() error = %v; want %v", err, review.ErrNotFound)
	}
}

func TestServiceDelete(t *testing.T) {
	fix := newTestFixture(t)
	ctx := context.Background()

	rev := testutil.CreateReview(t, fix.repo, fix.usr.ID, fix.mov.ID, "A classic", "Great.", 9)

	if err := fix.svc.Delete(ctx, rev.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := fix.svc.GetByID(ctx, rev.ID); errors.Cause(err) != review.ErrNotFound {
		t.Errorf("GetByID() error = %v; want %v", err, review.ErrNotFound)
	}
	if count, _ := fix.svc.Count(ctx); count != 0 {
		t.Errorf("Count() = %d; want 0", count)
	}
}
