package tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	. "github.com/kymoh/moviematrix/apps/web/echo"
	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/movie"
	"github.com/kymoh/moviematrix/core/review"
	"github.com/kymoh/moviematrix/core/user"
	emailsvc "github.com/kymoh/moviematrix/services/email"
	"github.com/kymoh/moviematrix/services/logger"
	dummydb "github.com/kymoh/moviematrix/storage/database/dummy"
	"github.com/kymoh/moviematrix/tests"
)

const authCookie = "mm_session"

// fakeInfoClient serves canned movie lookups keyed on title.
type fakeInfoClient struct {
	infos map[string]movie.Info
}

var _ movie.InfoClient = (*fakeInfoClient)(nil)

func (c *fakeInfoClient) Fetch(ctx context.Context, title, year string) (*movie.Info, error) {
	info, ok := c.infos[title]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

type testApp struct {
	app     Server
	conf    *core.Config
	client  *fakeInfoClient
	usrRepo user.Repository
	movRepo movie.Repository
	revRepo review.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	movRepo := dummydb.NewMovieRepository(db)
	revRepo := dummydb.NewReviewRepository(db)

	// set up services
	conf := testutil.NewConfig()
	client := &fakeInfoClient{infos: make(map[string]movie.Info)}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	validate, translator := testutil.NewValidator()

	// set up server
	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger.NewTestLogger(),
		UserSvc:        user.NewService(usrRepo, mailSvc, conf),
		MovieSvc:       movie.NewService(movRepo, client),
		ReviewSvc:      review.NewService(revRepo),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	return &testApp{
		app:     app,
		conf:    conf,
		client:  client,
		usrRepo: usrRepo,
		movRepo: movRepo,
		revRepo: revRepo,
	}
}

func newAuthRequest(method, path, token string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	var body *strings.Reader
	if len(form) > 0 {
		body = strings.NewReader(form[0].Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if len(form) > 0 {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, form ...url.Values) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", form...)
}

func (ta *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(GetUserClaims(usr, ta.conf), ta.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func checkRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("code = %v; want %v (body: %s)", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != wantLocation {
		t.Errorf("Location = %q; want %q", loc, wantLocation)
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) {
	t.Helper()

	if rec.Code != wantCode {
		t.Fatalf("code = %v; want %v (body: %s)", rec.Code, wantCode, rec.Body.String())
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) (*http.Cookie, bool) {
	res := rec.Result()
	defer res.Body.Close()
	for _, cookie := range res.Cookies() {
		if cookie.Name == authCookie {
			return cookie, true
		}
	}
	return nil, false
}
