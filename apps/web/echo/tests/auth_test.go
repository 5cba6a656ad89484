package tests

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/kymoh/moviematrix/tests"
)

func TestLogin(t *testing.T) {
	ta := setup(t)
	usr := testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "jdoe")
		form.Set("password", "nope")
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "nobody")
		form.Set("password", "V3ry$ecret!")
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})

	t.Run("next param is honored", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "jdoe")
		form.Set("password", "V3ry$ecret!")
		form.Set("next", fmt.Sprintf("/users/%d/reviews", usr.ID))
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)
		checkRedirect(t, rec, fmt.Sprintf("/users/%d/reviews", usr.ID))
	})

	t.Run("absolute next is ignored", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "jdoe")
		form.Set("password", "V3ry$ecret!")
		form.Set("next", "https://evil.test/phish")
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)
		checkRedirect(t, rec, fmt.Sprintf("/users/%d", usr.ID))
	})

	t.Run("ok with email too", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "JDoe@test.cd")
		form.Set("password", "V3ry$ecret!")
		req, rec := newRequest(http.MethodPost, "/login", form)
		ta.app.ServeHTTP(rec, req)

		checkRedirect(t, rec, fmt.Sprintf("/users/%d", usr.ID))
		cookie, ok := sessionCookie(rec)
		if !ok {
			t.Fatal("no session cookie was set")
		}
		if cookie.Value == "" || !cookie.HttpOnly {
			t.Errorf("session cookie = %+v; want a non-empty HttpOnly cookie", cookie)
		}
	})
}

func TestLoginFormRedirectsWhenAuthenticated(t *testing.T) {
	ta := setup(t)
	usr := testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	req, rec := newAuthRequest(http.MethodGet, "/login", ta.getToken(t, usr))
	ta.app.ServeHTTP(rec, req)
	checkRedirect(t, rec, fmt.Sprintf("/users/%d", usr.ID))
}

func TestLogout(t *testing.T) {
	ta := setup(t)
	usr := testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	req, rec := newAuthRequest(http.MethodGet, "/logout", ta.getToken(t, usr))
	ta.app.ServeHTTP(rec, req)

	checkRedirect(t, rec, "/")
	cookie, ok := sessionCookie(rec)
	if !ok {
		t.Fatal("the session cookie was not cleared")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("session cookie = %+v; want it expired", cookie)
	}
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ta := setup(t)
	usr := testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	paths := []string{
		fmt.Sprintf("/users/%d", usr.ID),
		fmt.Sprintf("/users/%d/edit", usr.ID),
		fmt.Sprintf("/users/%d/movies/add", usr.ID),
		fmt.Sprintf("/users/%d/reviews", usr.ID),
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, path)
			ta.app.ServeHTTP(rec, req)
			checkRedirect(t, rec, "/login?next="+url.QueryEscape(path))
		})
	}
}

func TestOwnerOnlyPagesAreForbiddenToOthers(t *testing.T) {
	ta := setup(t)
	testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")
	intruder := testutil.CreateUser(t, ta.usrRepo, "janedoe", "janedoe@test.cd", "Jane", "V3ry$ecret!")
	token := ta.getToken(t, intruder)

	paths := []string{
		"/users/1",
		"/users/1/edit",
		"/users/1/change_password",
		"/users/1/movies/add",
		"/users/1/reviews",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			ta.app.ServeHTTP(rec, req)
			checkCode(t, rec, http.StatusForbidden)
		})
	}
}

func TestPasswordReset(t *testing.T) {
	ta := setup(t)
	testutil.CreateUser(t, ta.usrRepo, "jdoe", "jdoe@test.cd", "John", "V3ry$ecret!")

	t.Run("known and unknown emails get the same answer", func(t *testing.T) {
		for _, email := range []string{"jdoe@test.cd", "nobody@test.cd"} {
			form := url.Values{}
			form.Set("email", email)
			req, rec := newRequest(http.MethodPost, "/password-reset", form)
			ta.app.ServeHTTP(rec, req)
			checkRedirect(t, rec, "/login")
		}
	})

	t.Run("confirm with a bogus token", func(t *testing.T) {
		form := url.Values{}
		form.Set("uid", "bogus")
		form.Set("token", "also-bogus")
		form.Set("password", "An0ther$ecret!")
		form.Set("confirm_password", "An0ther$ecret!")
		req, rec := newRequest(http.MethodPost, "/password-reset-confirm", form)
		ta.app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})
}
