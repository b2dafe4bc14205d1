package render

type defaultsFactory func(ctx *Context, opts Options) *table

// defaultFormats binds each built-in format to its default handlers. A
// factory runs once per render so handler state never leaks between calls.
var defaultFormats = map[string]defaultsFactory{
	FormatHTML: newHTMLDefaults,
	FormatText: newTextDefaults,
	FormatJSON: newJSONDefaults,
}

// EmitsHTML reports whether format produces HTML: Md2HTML itself and every
// custom format, which starts from the Md2HTML defaults.
func EmitsHTML(format string) bool {
	return format == FormatHTML || !IsBuiltin(format)
}

// IsBuiltin reports whether format has its own default handlers.
func IsBuiltin(format string) bool {
	_, ok := defaultFormats[format]
	return ok
}
