package asset

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// metaImageKeys are the <meta> properties that name a post's main image,
// in order of preference.
var metaImageKeys = []string{"og:image:secure_url", "og:image", "og:image:url", "twitter:image", "twitter:image:src"}

// decorativeHints mark <img> sources that are page furniture rather than
// the photo: avatars, logos and icons.
var decorativeHints = []string{"profile_pic", "profile_images", "avatar", "logo", "icon", "emoji", "sprite", "favicon"}

// FindPageImage returns the absolute URL of the main image of an HTML page.
//
// Meta tags win over <img> elements because social networks fill them with
// the post's media while the body is mostly interface. The first <img>
// whose source does not look decorative is the fallback.
func FindPageImage(r io.Reader, base *url.URL) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	meta := make(map[string]string)
	var firstImg string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				key := strings.ToLower(getAttr(n, "property"))
				if key == "" {
					key = strings.ToLower(getAttr(n, "name"))
				}
				if content := strings.TrimSpace(getAttr(n, "content")); key != "" && content != "" {
					if _, seen := meta[key]; !seen {
						meta[key] = content
					}
				}
			case "img":
				if firstImg == "" {
					src := strings.TrimSpace(getAttr(n, "src"))
					if src != "" && !strings.HasPrefix(src, "data:") && !isDecorative(src) {
						firstImg = src
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, key := range metaImageKeys {
		if v, ok := meta[key]; ok {
			if abs, ok := resolve(base, v); ok {
				return abs, nil
			}
		}
	}
	if firstImg != "" {
		if abs, ok := resolve(base, firstImg); ok {
			return abs, nil
		}
	}
	return "", ErrNoPageImage
}

func isDecorative(src string) bool {
	lower := strings.ToLower(src)
	for _, hint := range decorativeHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// resolve makes ref absolute against base and keeps only http(s) results.
func resolve(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return u.String(), true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
