package ui

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/theme"

	gomponents "maragu.dev/gomponents"
)

// clientHintHeader carries the browser's color-scheme preference when the
// server has asked for it with Accept-CH.
const clientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// cookieStorage exposes the cookie mirror of the stored choice as a
// read-only storage slot.
type cookieStorage struct {
	r *http.Request
}

func (s cookieStorage) GetItem(key string) (string, bool, error) {
	c, err := s.r.Cookie(key)
	if errors.Is(err, http.ErrNoCookie) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (cookieStorage) SetItem(string, string) error { return theme.ErrStorageUnavailable }

// prefersDark reads the color-scheme client hint.
func prefersDark(r *http.Request) bool {
	return strings.EqualFold(strings.Trim(r.Header.Get(clientHintHeader), `" `), domain.ThemeDark)
}

// prerender runs the boot pipeline against an in-memory root so the served
// <html> element already carries what the inline script will write. A
// window from the request context gets the controller mounted.
func prerender(cfg domain.Config, r *http.Request, logger *slog.Logger) (theme.DOMState, domain.ThemeState) {
	root := theme.NewRoot()
	opts := theme.Options{
		Storage: cookieStorage{r: r},
		Media:   theme.NewMediaQueryList(prefersDark(r)),
		Logger:  logger,
	}
	var ctrl *theme.Controller
	if win, ok := theme.WindowFromContext(r.Context()); ok {
		ctrl = win.Boot(cfg, root, opts)
	} else {
		ctrl = theme.Boot(cfg, root, opts)
	}
	defer ctrl.Close()
	return root.Snapshot(), ctrl.State()
}

// rootAttributes turns a DOM snapshot into attributes for the <html> element.
func rootAttributes(dom theme.DOMState) []gomponents.Node {
	nodes := make([]gomponents.Node, 0, len(dom.Attributes)+2)
	if cls := dom.ClassName(); cls != "" {
		nodes = append(nodes, gomponents.Attr("class", cls))
	}
	for _, name := range dom.AttributeNames() {
		nodes = append(nodes, gomponents.Attr(name, dom.Attributes[name]))
	}
	if dom.ColorScheme != "" {
		nodes = append(nodes, gomponents.Attr("style", "color-scheme: "+dom.ColorScheme))
	}
	return nodes
}
