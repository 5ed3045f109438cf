package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// key binds a dotted config key ("serve.listen") to its field.
type key struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var keys = map[string]key{
	"preferred_browser": stringKey(func(c *Config) *string { return &c.PreferredBrowser }),
	"db_path":           stringKey(func(c *Config) *string { return &c.DBPath }),
	"log_level":         stringKey(func(c *Config) *string { return &c.LogLevel }),
	"pretty_log":        boolKey(func(c *Config) *bool { return &c.PrettyLog }),
	"max_results":       intKey(func(c *Config) *int { return &c.MaxResults }),

	"frecency.hour":  floatKey(func(c *Config) *float64 { return &c.Frecency.Hour }),
	"frecency.day":   floatKey(func(c *Config) *float64 { return &c.Frecency.Day }),
	"frecency.week":  floatKey(func(c *Config) *float64 { return &c.Frecency.Week }),
	"frecency.older": floatKey(func(c *Config) *float64 { return &c.Frecency.Older }),

	"serve.listen":           stringKey(func(c *Config) *string { return &c.Serve.Listen }),
	"serve.prune_interval":   durationKey(func(c *Config) *Duration { return &c.Serve.PruneInterval }),
	"serve.prune_after":      durationKey(func(c *Config) *Duration { return &c.Serve.PruneAfter }),
	"serve.shutdown_timeout": durationKey(func(c *Config) *Duration { return &c.Serve.ShutdownTimeout }),
	"serve.import_interval":  durationKey(func(c *Config) *Duration { return &c.Serve.ImportInterval }),

	"cache.redis_addr":      stringKey(func(c *Config) *string { return &c.Cache.RedisAddr }),
	"cache.redis_password":  stringKey(func(c *Config) *string { return &c.Cache.RedisPassword }),
	"cache.redis_db":        intKey(func(c *Config) *int { return &c.Cache.RedisDB }),
	"cache.ttl":             durationKey(func(c *Config) *Duration { return &c.Cache.TTL }),
	"cache.connect_timeout": durationKey(func(c *Config) *Duration { return &c.Cache.ConnectTimeout }),

	"import.services_file":  stringKey(func(c *Config) *string { return &c.Import.ServicesFile }),
	"import.bookmarks_file": stringKey(func(c *Config) *string { return &c.Import.BookmarksFile }),
}

// Keys lists every settable key, sorted.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the string form of a dotted key.
func (c *Config) Get(name string) (string, error) {
	k, ok := keys[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", name)
	}
	return k.get(c), nil
}

// Set parses value into the field behind a dotted key and revalidates.
func (c *Config) Set(name, value string) error {
	k, ok := keys[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown config key %q", name)
	}

	next := *c
	if err := k.set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func stringKey(field func(*Config) *string) key {
	return key{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func boolKey(field func(*Config) *bool) key {
	return key{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func intKey(field func(*Config) *int) key {
	return key{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			i, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = i
			return nil
		},
	}
}

func floatKey(field func(*Config) *float64) key {
	return key{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
	}
}

func durationKey(field func(*Config) *Duration) key {
	return key{
		get: func(c *Config) string { return field(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			field(c).Duration = d
			return nil
		},
	}
}
