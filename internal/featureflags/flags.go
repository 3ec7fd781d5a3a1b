// Package featureflags switches optional site behaviour on and off from the
// FEATURE_FLAGS setting.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// PageCache serves the index page from the page cache.
	PageCache = "page_cache"
	// WebPThumbnails adds a WebP source next to the JPEG post thumbnail.
	WebPThumbnails = "webp_thumbnails"
)

// defaults apply to flags that FEATURE_FLAGS does not mention.
var defaults = map[string]string{
	PageCache: "on",
}

// Flags evaluates a comma-separated key=value list such as
// "page_cache=on,webp_thumbnails=25%".
type Flags struct {
	values map[string]string
}

// Parse reads raw. Malformed pairs are skipped.
func Parse(raw string) *Flags {
	values := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		values[key] = value
	}
	for key, value := range defaults {
		if _, ok := values[key]; !ok {
			values[key] = value
		}
	}
	return &Flags{values: values}
}

// Enabled reports whether name is on for viewerID. A percentage rolls the
// flag out to a stable share of logged-in users; guests (viewerID 0) only
// see flags that are fully on. Unknown flags are off.
func (f *Flags) Enabled(name string, viewerID uint) bool {
	if f == nil {
		f = Parse("")
	}
	value, ok := f.values[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if viewerID == 0 {
		return false
	}
	return bucket(name, viewerID) < pct
}

// Names lists the configured flags in order.
func (f *Flags) Names() []string {
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, viewerID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), viewerID)
	return int(h.Sum32() % 100)
}
