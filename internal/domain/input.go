package domain

// ThemeInput is the argument to SetTheme: either a literal theme name or a
// pure function of the previous theme name.
type ThemeInput struct {
	name    string
	updater func(prev string) string
}

// Literal builds a ThemeInput that selects name.
func Literal(name string) ThemeInput {
	return ThemeInput{name: name}
}

// Updater builds a ThemeInput computed from the previous theme name.
// A nil fn behaves as the identity.
func Updater(fn func(prev string) string) ThemeInput {
	if fn == nil {
		fn = func(prev string) string { return prev }
	}
	return ThemeInput{updater: fn}
}

// IsUpdater reports whether the input is the function form.
func (in ThemeInput) IsUpdater() bool { return in.updater != nil }

// Next returns the theme name the input selects given the previous one.
func (in ThemeInput) Next(prev string) string {
	if in.updater != nil {
		return in.updater(prev)
	}
	return in.name
}
