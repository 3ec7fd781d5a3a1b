package cache

import "fmt"

const PageKeyPrefix = "page:"

// PageKey is the cache key of a rendered page for one viewer. Anonymous
// viewers share viewerID 0.
func PageKey(uri string, viewerID uint) string {
	return fmt.Sprintf("%s%d:%s", PageKeyPrefix, viewerID, uri)
}
