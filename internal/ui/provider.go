package ui

import (
	"fmt"
	"slices"
	"strings"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/script"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// ThemeProvider renders the pre-paint inline script element for props. It
// belongs in the document head, before any stylesheet.
func ThemeProvider(props domain.Props) (gomponents.Node, error) {
	node, _, err := renderProvider(props)
	return node, err
}

// renderProvider returns the script element along with the script it embeds.
func renderProvider(props domain.Props) (gomponents.Node, script.Script, error) {
	cfg := props.Config()
	if err := cfg.Validate(); err != nil {
		return nil, script.Script{}, fmt.Errorf("invalid theme config: %w", err)
	}
	rendered, err := script.Render(cfg)
	if err != nil {
		return nil, script.Script{}, err
	}
	return scriptElement(rendered.Minified, props), rendered, nil
}

// HeadSnippet renders ThemeProvider as an HTML fragment.
func HeadSnippet(props domain.Props) (string, error) {
	node, err := ThemeProvider(props)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := node.Render(&b); err != nil {
		return "", fmt.Errorf("render head snippet: %w", err)
	}
	return b.String(), nil
}

func scriptElement(src string, props domain.Props) gomponents.Node {
	nodes := make([]gomponents.Node, 0, len(props.ScriptProps)+2)
	if props.Nonce != "" {
		nodes = append(nodes, gomponents.Attr("nonce", props.Nonce))
	}
	keys := make([]string, 0, len(props.ScriptProps))
	for k := range props.ScriptProps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !validScriptProp(k) || (k == "nonce" && props.Nonce != "") {
			continue
		}
		nodes = append(nodes, gomponents.Attr(k, props.ScriptProps[k]))
	}
	nodes = append(nodes, gomponents.Raw(src))
	return html.Script(nodes...)
}

// validScriptProp rejects names that would change what the element runs or
// break out of the tag.
func validScriptProp(name string) bool {
	switch strings.ToLower(name) {
	case "", "src", "type":
		return false
	}
	return !strings.ContainsAny(name, " \t\n\"'<>=/")
}
