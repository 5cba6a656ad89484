package echoweb

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/kymoh/moviematrix/core"
)

const flashSessionName = "mm_flash"

func newSessionStore(conf *core.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   !conf.Debug,
	}
	return store
}

// addFlash queues a one-time message for the next rendered page.
func (s *server) addFlash(ctx echo.Context, msg string) {
	sess, _ := s.store.Get(ctx.Request(), flashSessionName)
	sess.AddFlash(msg)
	_ = sess.Save(ctx.Request(), ctx.Response())
}

// popFlashes drains the queued messages.
func (s *server) popFlashes(ctx echo.Context) []string {
	sess, _ := s.store.Get(ctx.Request(), flashSessionName)
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save(ctx.Request(), ctx.Response())
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
