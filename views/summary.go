package views

import (
	"fmt"
	"regexp"
	"strings"
)

var moreMarker = regexp.MustCompile(`<p id="more-(\d+)">`)

// Summary returns content up to the first more marker followed by a read more
// link to url. The second result is false when content has no marker and is
// returned whole.
func Summary(content, url string) (string, bool) {
	m := moreMarker.FindStringSubmatchIndex(content)
	if m == nil {
		return content, false
	}
	id := content[m[2]:m[3]]
	link := fmt.Sprintf(`<p><a class="more-link" href="%s#more-%s">Read more...</a></p>`, url, id)
	return strings.TrimRight(content[:m[0]], "\n") + link, true
}
