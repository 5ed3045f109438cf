package homepage

import (
	"sort"
	"strings"
)

// ServiceURLs returns the href of every service, in file order, without
// duplicates. Entries without an href are skipped.
func ServiceURLs(config ServicesConfig) []string {
	var c collector
	for _, group := range config {
		for _, groupName := range sortedKeys(group) {
			for _, serviceMap := range group[groupName] {
				for _, name := range sortedKeys(serviceMap) {
					c.add(serviceMap[name].Href)
				}
			}
		}
	}
	return c.urls
}

// BookmarkURLs returns the href of every bookmark, in file order, without
// duplicates.
func BookmarkURLs(config BookmarksConfig) []string {
	var c collector
	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, name := range sortedKeys(bookmarkMap) {
					// Each bookmark has a list with a single entry
					if entries := bookmarkMap[name]; len(entries) > 0 {
						c.add(entries[0].Href)
					}
				}
			}
		}
	}
	return c.urls
}

type collector struct {
	urls []string
	seen map[string]bool
}

func (c *collector) add(href string) {
	href = strings.TrimSpace(href)
	if href == "" {
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[href] {
		return
	}
	c.seen[href] = true
	c.urls = append(c.urls, href)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
