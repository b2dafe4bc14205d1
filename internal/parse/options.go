package parse

// Options toggles the syntax extensions understood by the parser.
type Options struct {
	// Strikethrough enables ~text~ and ~~text~~.
	Strikethrough bool
	// TaskListItems turns a leading "[ ]" or "[x]" in a list item into a
	// TaskListItemMarker node.
	TaskListItems bool
	// Tables enables pipe tables.
	Tables bool
	// Autolinks turns bare www., http(s):// and ftp:// URLs and email
	// addresses into links.
	Autolinks bool
	// HeadingIDs assigns a unique slug "id" attribute to every heading.
	HeadingIDs bool
}

// DefaultOptions enables the GFM extensions and leaves heading IDs off.
func DefaultOptions() Options {
	return Options{
		Strikethrough: true,
		TaskListItems: true,
		Tables:        true,
		Autolinks:     true,
	}
}
