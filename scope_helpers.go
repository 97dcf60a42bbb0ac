package variants

const (
	// Recommended priorities for common selection layering. Higher numbers win.
	ScopePriorityTheme     = 100
	ScopePriorityComponent = 200
	ScopePriorityInstance  = 300
)

// ThemeComponentInstance assembles the canonical three-layer stack (theme →
// component → instance). Nil selections are kept as empty layers.
func ThemeComponentInstance(theme, component, instance Selection) (*Stack, error) {
	return NewStack(
		NewLayer(NewScope("instance", ScopePriorityInstance, WithScopeLabel("Instance")), instance),
		NewLayer(NewScope("component", ScopePriorityComponent, WithScopeLabel("Component")), component),
		NewLayer(NewScope("theme", ScopePriorityTheme, WithScopeLabel("Theme")), theme),
	)
}
