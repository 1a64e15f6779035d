package router

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/screen"
)

// PushScreenMsg requests the router to push a new screen onto the stack.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg requests the router to pop the current screen off the stack.
type PopScreenMsg struct{}

// ReplaceScreenMsg requests the router to swap the active screen.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// NavigateMsg requests navigation to a route path such as
// "/support/tickets/42". "/" returns to the root screen. With Replace the
// destination takes the active screen's place instead of being pushed.
type NavigateMsg struct {
	Path    string
	Replace bool
}

// UnknownRouteMsg is emitted when a NavigateMsg matches no route.
type UnknownRouteMsg struct {
	Path string
}

// Navigate returns a command emitting NavigateMsg for path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Route maps a pattern with optional {param} segments to a screen factory.
type Route struct {
	Pattern string
	Build   func(params map[string]string) screen.Screen
}

// match returns the params captured from path, or false.
func (rt Route) match(path string) (map[string]string, bool) {
	want := splitPath(rt.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return nil, false
			}
			params[seg[1:len(seg)-1]] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Routes is an ordered route table; the first match wins.
type Routes []Route

// Resolve builds the screen for path.
func (rs Routes) Resolve(path string) (screen.Screen, bool) {
	for _, rt := range rs {
		if params, ok := rt.match(path); ok {
			return rt.Build(params), true
		}
	}
	return nil, false
}

// Router manages a stack of screens.
type Router struct {
	stack  []screen.Screen
	routes Routes
}

// Option configures a Router.
type Option func(*Router)

// WithRoutes installs the table NavigateMsg is resolved against.
func WithRoutes(routes Routes) Option {
	return func(r *Router) { r.routes = routes }
}

// New creates a new Router with the given initial screen.
func New(initial screen.Screen, opts ...Option) *Router {
	r := &Router{
		stack: []screen.Screen{initial},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Push adds a screen on top of the stack and calls its Init().
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop removes and closes the top screen and resumes the one revealed.
// No-op if stack depth would become 0.
func (r *Router) Pop() tea.Cmd {
	if !r.drop() {
		return nil
	}
	return resumeScreen(r.Active())
}

// PopToRoot closes every screen above the root and resumes the root.
func (r *Router) PopToRoot() tea.Cmd {
	dropped := false
	for r.drop() {
		dropped = true
	}
	if !dropped {
		return nil
	}
	return resumeScreen(r.Active())
}

func (r *Router) drop() bool {
	if len(r.stack) <= 1 {
		return false
	}
	closeScreen(r.stack[len(r.stack)-1])
	r.stack = r.stack[:len(r.stack)-1]
	return true
}

// Replace closes the active screen and puts s in its place.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(s)
	}
	closeScreen(r.stack[len(r.stack)-1])
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Navigate resolves path against the route table.
func (r *Router) Navigate(msg NavigateMsg) tea.Cmd {
	if len(splitPath(msg.Path)) == 0 {
		return r.PopToRoot()
	}
	s, ok := r.routes.Resolve(msg.Path)
	if !ok {
		return func() tea.Msg { return UnknownRouteMsg{Path: msg.Path} }
	}
	if msg.Replace {
		return r.Replace(s)
	}
	return r.Push(s)
}

func resumeScreen(s screen.Screen) tea.Cmd {
	if rs, ok := s.(screen.Resumer); ok {
		return rs.Resume()
	}
	return nil
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// Active returns the top screen on the stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of screens on the stack.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update forwards a message to the active screen and handles navigation messages.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case NavigateMsg:
		return r.Navigate(msg)
	}

	active := r.Active()
	if active == nil {
		return nil
	}

	updated, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	active := r.Active()
	if active == nil {
		return ""
	}
	return active.View(width, height)
}
