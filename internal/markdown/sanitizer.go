package markdown

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var classTokens = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

// gallerySanitizer is the UGC policy extended with the attributes gallery
// fragments rely on.
var gallerySanitizer = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classTokens).OnElements("div", "a", "img")
	return policy
})

func sanitize(rendered []byte) []byte {
	return gallerySanitizer().SanitizeBytes(rendered)
}
