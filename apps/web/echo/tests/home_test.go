package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/tests"
)

func TestHome(t *testing.T) {
	ta := setup(t)
	usr := testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "")
	mov := testutil.CreateMovie(t, ta.movRepo, movie.Movie{Title: "Heat", Year: null.IntFrom(1995)})
	testutil.CreateReview(t, ta.revRepo, usr.ID, mov.ID, "A classic", "Great.", 9)

	req, rec := newRequest(http.MethodGet, "/")
	ta.app.ServeHTTP(rec, req)

	checkCode(t, rec, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "MovieMatrix") {
		t.Error("the landing page does not show the app name")
	}
}

func TestUnknownPage(t *testing.T) {
	ta := setup(t)

	req, rec := newRequest(http.MethodGet, "/definitely-not-a-page")
	ta.app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNotFound)
}
