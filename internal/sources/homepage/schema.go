package homepage

// ServicesConfig represents the top-level structure of services.yaml
// Homepage uses dynamic keys, so we parse as []map[string][]map[string]ServiceProps
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps holds the service fields otot cares about. Widgets,
// monitors and icons are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
}

// BookmarkEntry represents a single bookmark entry in the YAML
type BookmarkEntry struct {
	Abbr string `yaml:"abbr"`
	Href string `yaml:"href"`
}

// BookmarksConfig is the root structure for bookmarks.yaml:
// - Category: [ - Name: [ { abbr, href } ] ]
type BookmarksConfig []map[string][]map[string][]BookmarkEntry
