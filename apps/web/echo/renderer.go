package echoweb

import (
	"fmt"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
)

// page is the data every template renders against.
type page struct {
	AppName string
	Title   string
	User    *user.User // authenticated user; nil for anonymous visitors
	Flashes []string
	Errors  map[string]string // field errors keyed by form field name
	Form    interface{}       // submitted form values, for re-rendering
	Data    interface{}       // page-specific payload
}

// renderer serves the embedded page templates, each wrapped in _base.gohtml.
type renderer struct {
	templates map[string]*htmltmpl.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(fsys fs.FS, conf *core.Config, logger core.Logger) *renderer {
	r := &renderer{templates: make(map[string]*htmltmpl.Template)}

	root := "templates/pages"
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		logger.Error(fmt.Sprintf("parsing page templates: %v", err), err)
		return r
	}

	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".gohtml" {
			continue
		}
		tmpl, err := htmltmpl.ParseFS(fsys, path.Join(root, "_base.gohtml"), path.Join(root, fname))
		if err != nil {
			logger.Error(fmt.Sprintf("parsing page template %s: %v", fname, err), err)
			continue
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		name := strings.TrimSuffix(fname, ".gohtml")
		r.templates[name] = tmpl
	}
	return r
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("page template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "_base.gohtml", data)
}

// newPage assembles the common template data: app name, the context user
// (if authenticated) and pending flash messages.
func (s *server) newPage(ctx echo.Context, title string) *page {
	p := &page{
		AppName: s.deps.Conf.AppName,
		Title:   title,
		Flashes: s.popFlashes(ctx),
	}
	if usr, err := s.getContextUser(ctx); err == nil {
		p.User = &usr
	}
	return p
}
