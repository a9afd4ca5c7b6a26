package ui

import (
	"net/url"
	"strconv"
	"strings"

	"astro-themes/internal/domain"
	"astro-themes/internal/service/script"
	"astro-themes/internal/service/theme"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

const (
	stylesheetHref = "/static/css/app.css"
	datastarSrc    = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"
)

type playgroundView struct {
	Provider Node
	Root     theme.DOMState
	State    domain.ThemeState
	Config   domain.Config
	CSPHash  string
	Toolbar  *script.ToolbarApp
}

func playgroundPage(v playgroundView) Node {
	stateSignals := map[string]any{
		"theme":    v.State.Theme,
		"resolved": v.State.ResolvedTheme,
		"system":   string(v.State.SystemTheme),
	}
	var toolbar Node
	if v.Toolbar != nil {
		toolbar = toolbarFrame(v.Toolbar)
	}

	page := append([]Node{Lang("en")}, rootAttributes(v.Root)...)
	page = append(page,
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text("Playground | astro-themes")),
			Link(Rel("icon"), Href("data:,")),
			v.Provider,
			Link(Rel("stylesheet"), Href(stylesheetHref)),
			Script(Type("module"), Src(datastarSrc)),
		),
		Body(
			Attr("data-storage-key", v.Config.StorageKey),
			Main(
				Class("layout"),
				H1(Text("astro-themes playground")),
				P(Class("muted"), Text("The inline script in the head resolved the theme before first paint.")),
				Section(
					Class("card"),
					ID("state"),
					data.Signals(stateSignals),
					Attr("data-on:astro-themes:change__window", "$theme = evt.detail.theme; $resolved = evt.detail.resolvedTheme"),
					H2(Text("Current theme")),
					stateRow("Theme", "$theme", v.State.Theme),
					stateRow("Resolved", "$resolved", v.State.ResolvedTheme),
					stateRow("System", "$system", string(v.State.SystemTheme)),
					If(v.Config.Forced(), P(Class("muted"), Text("This page forces "+strconv.Quote(v.Config.ForcedTheme)+"; choices below last for this visit only."))),
				),
				Section(
					Class("card"),
					H2(Text("Choose")),
					Group(themeButtons(v.Config)),
					Button(Type("button"), Class("btn"), Attr("data-toggle-theme", ""), Text("Toggle light/dark")),
				),
				Section(
					Class("card"),
					H2(Text("Forced pages")),
					forcedLinks(v.Config),
				),
				Section(
					Class("card"),
					H2(Text("Artifacts")),
					Ul(
						Li(A(Href("/themes/script.js"), Text("Inline script"))),
						Li(A(Href("/themes/script.js?minify=false"), Text("Inline script (readable)"))),
						Li(A(Href("/themes/head.html"), Text("Head snippet"))),
						Li(A(Href("/themes/"+script.TypesFilename), Text(script.TypesFilename))),
					),
					P(Class("muted"), Text("CSP source for the inline script:")),
					P(Code(Text(v.CSPHash))),
				),
				toolbar,
			),
			Script(Raw(playgroundBehaviorScript)),
		),
	)
	return HTML(page...)
}

func stateRow(label, signal, initial string) Node {
	return P(
		Strong(Text(label+": ")),
		Span(Attr("data-text", signal), Text(initial)),
	)
}

func themeButtons(cfg domain.Config) []Node {
	names := append([]string(nil), cfg.Themes...)
	if cfg.EnableSystem {
		names = append(names, domain.ThemeSystem)
	}
	buttons := make([]Node, 0, len(names))
	for _, name := range names {
		buttons = append(buttons, Button(
			Type("button"),
			Class("btn"),
			Attr("data-set-theme", name),
			Attr("aria-pressed", "false"),
			Text(name),
		))
	}
	return buttons
}

func forcedLinks(cfg domain.Config) Node {
	items := []Node{Li(A(Href("/"), Text("Not forced")))}
	for _, name := range cfg.Themes {
		items = append(items, Li(A(Href("/?forced="+url.QueryEscape(name)), Text("Forced "+name))))
	}
	return Ul(Group(items))
}

func toolbarFrame(app *script.ToolbarApp) Node {
	return Section(
		Class("card"),
		H2(Text(app.Name)),
		El("iframe", Class("toolbar-frame"), Src(app.Entrypoint), Title(app.Name)),
	)
}

func toolbarPage(app *script.ToolbarApp, cfg domain.Config) Node {
	names := append([]string(nil), cfg.Themes...)
	if cfg.EnableSystem {
		names = append(names, domain.ThemeSystem)
	}
	rows := make([]Node, 0, len(names))
	for _, name := range names {
		rows = append(rows, Li(
			data.Show(containsExpr(name)),
			Button(Type("button"), Class("btn"), Attr("data-set-theme", name), Attr("aria-pressed", "false"), Text(name)),
		))
	}

	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			TitleEl(Text(app.Name)),
			Link(Rel("stylesheet"), Href(stylesheetHref)),
			Script(Type("module"), Src(datastarSrc)),
		),
		Body(
			Main(
				Class("layout"),
				Div(Class("card"), Raw(app.Icon), Strong(Text(" "+app.Name))),
				P(ID("toolbar-status"), Class("muted")),
				Div(
					data.Signals(map[string]any{"q": ""}),
					Div(
						Class("card"),
						Label(Text("Quick filter")),
						Input(Type("search"), Placeholder("Filter themes"), data.Bind("q"), AutoComplete("off")),
					),
					Ul(Group(rows)),
				),
				Button(Type("button"), Class("btn"), Attr("data-toggle-theme", ""), Text("Toggle light/dark")),
			),
			Script(Raw(toolbarBehaviorScript)),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Head(
			Meta(Charset("utf-8")),
			Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
			TitleEl(Text(title+" | astro-themes")),
			Link(Rel("stylesheet"), Href(stylesheetHref)),
		),
		Body(
			Main(
				Class("layout"),
				H1(Text(title)),
				P(Text(message)),
				P(A(Href("/"), Text("Back to the playground"))),
			),
		),
	)
}

func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}
