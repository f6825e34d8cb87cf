// Package storage talks to the remote object-storage provider holding
// uploaded gallery images. Files are grouped by upload session; a session
// is either committed (its files retained) or eventually reclaimed.
package storage

import (
	"net/url"
	"strings"
)

// ObjectStorage is the provider boundary the gallery lifecycle depends on.
type ObjectStorage interface {
	// Upload stores one file under the given session and returns its
	// public URL.
	Upload(sessionID, filename, contentType string, data []byte) (string, error)

	// Commit marks the session's files as retained and records urls as the
	// preserve set, exempting them from any later reclaim.
	Commit(sessionID string, urls []string) error

	// Cleanup deletes files belonging to the session whose URLs are not in
	// preserveURLs. It reports whether every deletable file was removed.
	Cleanup(sessionID string, preserveURLs []string) (bool, error)
}

// NormalizeURL strips the query string and fragment from a provider URL.
// Signed variants of the same object differ only by query parameters, so
// the bare path is the identity used for de-duplication and preserve-set
// membership.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
