// Package updater compiles Starlark snippets into setTheme updater
// functions of the previous theme name.
package updater

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"astro-themes/internal/domain"
)

const (
	defaultMaxSteps = uint64(10_000)
	defaultTimeout  = time.Second
	maxSourceBytes  = 16 * 1024
	maxResultBytes  = 256
	entrypoint      = "update"
)

// Program is a compiled updater. The snippet sees the previous theme as
// prev, the configured theme list as themes and a cycle(name) builtin that
// returns the theme after name in the list.
type Program struct {
	name     string
	fn       starlark.Callable
	maxSteps uint64
	timeout  time.Duration
}

// Compile loads src. A single expression line becomes the return value;
// anything else is used as the function body.
func Compile(name, src string, themes []string) (*Program, error) {
	if len(src) > maxSourceBytes {
		return nil, domain.ErrValidation("updater %q exceeds %d bytes", name, maxSourceBytes)
	}
	body := strings.TrimSpace(src)
	if body == "" {
		return nil, domain.ErrValidation("updater %q is empty", name)
	}

	module := renderModule(body)
	predeclared := starlark.StringDict{
		"themes": themeTuple(themes),
		"cycle":  starlark.NewBuiltin("cycle", cycleBuiltin(themes)),
	}

	p := &Program{name: name, maxSteps: defaultMaxSteps, timeout: defaultTimeout}
	thread := &starlark.Thread{Name: "updater-load"}
	thread.SetMaxExecutionSteps(p.maxSteps)

	var globals starlark.StringDict
	if err := runWithTimeout(thread, p.timeout, func() error {
		loaded, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name+".star", module, predeclared)
		if err != nil {
			return err
		}
		globals = loaded
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load updater %q: %w", name, err)
	}

	fn, ok := globals[entrypoint].(starlark.Callable)
	if !ok {
		return nil, domain.ErrValidation("updater %q does not define %s(prev)", name, entrypoint)
	}
	p.fn = fn
	return p, nil
}

// Eval runs the updater for prev.
func (p *Program) Eval(prev string) (string, error) {
	thread := &starlark.Thread{Name: "updater-eval"}
	thread.SetMaxExecutionSteps(p.maxSteps)

	var result starlark.Value
	if err := runWithTimeout(thread, p.timeout, func() error {
		v, err := starlark.Call(thread, p.fn, starlark.Tuple{starlark.String(prev)}, nil)
		if err != nil {
			return err
		}
		result = v
		return nil
	}); err != nil {
		return "", fmt.Errorf("run updater %q: %w", p.name, err)
	}

	next, ok := starlark.AsString(result)
	if !ok {
		return "", domain.ErrValidation("updater %q must return a string, got %s", p.name, result.Type())
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return "", domain.ErrValidation("updater %q returned an empty theme", p.name)
	}
	if len(next) > maxResultBytes {
		return "", domain.ErrValidation("updater %q result exceeds %d bytes", p.name, maxResultBytes)
	}
	return next, nil
}

// Input adapts the program to a setTheme updater. A failing run keeps the
// previous theme.
func (p *Program) Input(logger *slog.Logger) domain.ThemeInput {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return domain.Updater(func(prev string) string {
		next, err := p.Eval(prev)
		if err != nil {
			logger.Warn("updater failed, keeping theme", "updater", p.name, "prev", prev, "error", err)
			return prev
		}
		return next
	})
}

func renderModule(body string) string {
	var b strings.Builder
	b.WriteString("def " + entrypoint + "(prev):\n")
	lines := strings.Split(body, "\n")
	if len(lines) == 1 && !looksLikeStatement(lines[0]) {
		b.WriteString("    return ")
		b.WriteString(lines[0])
		b.WriteByte('\n')
		return b.String()
	}
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			b.WriteString("    \n")
			continue
		}
		b.WriteString("    ")
		b.WriteString(trimmed)
		b.WriteByte('\n')
	}
	return b.String()
}

func looksLikeStatement(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"return ", "if ", "for ", "pass", "def "} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func themeTuple(themes []string) starlark.Tuple {
	out := make(starlark.Tuple, 0, len(themes))
	for _, t := range themes {
		out = append(out, starlark.String(t))
	}
	return out
}

func cycleBuiltin(themes []string) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	list := slices.Clone(themes)
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return starlark.String(name), nil
		}
		i := slices.Index(list, name)
		return starlark.String(list[(i+1)%len(list)]), nil
	}
}

func runWithTimeout(thread *starlark.Thread, timeout time.Duration, fn func() error) error {
	if timeout <= 0 {
		return fn()
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		thread.Cancel("updater timed out")
		if err := <-done; err != nil {
			return domain.ErrValidation("updater timed out after %s: %v", timeout, err)
		}
		return domain.ErrValidation("updater timed out after %s", timeout)
	}
}
