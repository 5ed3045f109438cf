package homepage

import "errors"

// Source names the Homepage files to import from. Either may be empty.
type Source struct {
	ServicesFile  string
	BookmarksFile string
}

// Empty reports whether no file is configured.
func (s Source) Empty() bool {
	return s.ServicesFile == "" && s.BookmarksFile == ""
}

// URLs loads every configured file and returns their hrefs, services first.
func (s Source) URLs() ([]string, error) {
	if s.Empty() {
		return nil, errors.New("no homepage services or bookmarks file configured")
	}

	var c collector
	if s.ServicesFile != "" {
		config, err := LoadServices(s.ServicesFile)
		if err != nil {
			return nil, err
		}
		for _, u := range ServiceURLs(config) {
			c.add(u)
		}
	}
	if s.BookmarksFile != "" {
		config, err := LoadBookmarks(s.BookmarksFile)
		if err != nil {
			return nil, err
		}
		for _, u := range BookmarkURLs(config) {
			c.add(u)
		}
	}
	return c.urls, nil
}
