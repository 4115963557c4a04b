package core

import "strings"

const hostMarker = "arxiv.org/"

const (
	pdfSegment = "/pdf/"
	absSegment = "/abs/"
)

// NormalizeDocumentKey canonicalizes a user-supplied document reference into a
// stable index key. URL forms have everything up to and including the /pdf/ or
// /abs/ path segment stripped (/pdf/ is checked first), then any trailing
// version suffix is removed by truncating at the first 'v' after the segment.
// Non-URL inputs get the same version-stripping and trimming.
//
// Pure function: no I/O, never fails. Two references to the same document
// normalize to the same key regardless of URL form or version suffix.
func NormalizeDocumentKey(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.Contains(strings.ToLower(s), hostMarker) {
		if i := strings.Index(s, pdfSegment); i >= 0 {
			s = s[i+len(pdfSegment):]
		} else if i := strings.Index(s, absSegment); i >= 0 {
			s = s[i+len(absSegment):]
		}
	}

	// Version suffixes look like "2312.12345v2"; truncate at the first 'v'.
	if i := strings.IndexByte(s, 'v'); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}

// LooksLikeReference reports whether the input resembles a document reference
// rather than a natural-language query: a recognized arXiv URL prefix or a
// digit-leading identifier.
func LooksLikeReference(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"https://arxiv.org", "arxiv.org", "0", "1", "2"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
