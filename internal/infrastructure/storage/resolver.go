package storage

import (
	"net/url"
	"strings"
)

const supabasePublicMarker = "/storage/v1/object/public/"

// PathResolver turns stored media field values into object keys. Values may be
// bare keys or full public URLs of this bucket.
type PathResolver struct {
	baseURL  *url.URL
	basePath string
	bucket   string
}

// NewPathResolver builds a resolver for a bucket and its public base URL.
// An empty or invalid base URL limits URL recognition to the Supabase layout.
func NewPathResolver(publicBaseURL, bucket string) *PathResolver {
	r := &PathResolver{bucket: bucket}
	if publicBaseURL == "" {
		return r
	}
	if u, err := url.Parse(strings.TrimRight(publicBaseURL, "/")); err == nil && u.Host != "" {
		r.baseURL = u
		r.basePath = u.Path
	}
	return r
}

// Resolve returns the object key for a stored value. A URL resolves if it is
// under the public base URL or carries this bucket's Supabase public path.
// ok is false for empty values and for URLs that match neither.
func (r *PathResolver) Resolve(raw string) (key string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(raw, "//") {
		key = strings.TrimLeft(raw, "/")
		return key, key != ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}

	if r.baseURL != nil && strings.EqualFold(u.Host, r.baseURL.Host) {
		if r.basePath == "" {
			key = strings.TrimLeft(u.Path, "/")
			return key, key != ""
		}
		if strings.HasPrefix(u.Path, r.basePath+"/") {
			key = strings.TrimLeft(strings.TrimPrefix(u.Path, r.basePath), "/")
			return key, key != ""
		}
	}

	// Supabase public URLs name the bucket in the path, whatever host serves them.
	marker := supabasePublicMarker + r.bucket + "/"
	if idx := strings.Index(u.Path, marker); idx >= 0 {
		key = u.Path[idx+len(marker):]
		return key, key != ""
	}
	return "", false
}
