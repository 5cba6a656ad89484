package echoweb

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// ownerMiddleware guards the /users/:id subtree: only the account owner
// may pass. Everyone else gets a 403.
func (s *server) ownerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := s.getContextUser(ctx)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
			if err != nil {
				return errHttpNotFound
			}
			if id != ctxUsr.ID {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func paramID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
