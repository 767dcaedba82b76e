// Package fetcher retrieves page metadata for a URL on a best-effort
// basis. It never fails its caller: anything that goes wrong degrades
// to a minimal fallback derived from the URL itself.
package fetcher

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const previewLimit = 500

// Metadata is the best-effort result of fetching a page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// Fetcher fetches page metadata over HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given request timeout.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to 10
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch retrieves the page and extracts title, description, and a text
// preview. On any failure it returns the URL-derived fallback.
func (f *Fetcher) Fetch(rawURL string) Metadata {
	fallback := fallbackMetadata(rawURL)

	resp, err := f.client.Get(rawURL)
	if err != nil {
		log.Printf("warning: fetch %s: %s", rawURL, normalizeError(err.Error()))
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("warning: fetch %s: %s", rawURL, http.StatusText(resp.StatusCode))
		return fallback
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		fallback.ContentType = contentType
		return fallback
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		log.Printf("warning: parse %s: %v", rawURL, err)
		return fallback
	}

	meta := extractMetadata(doc)
	meta.ContentType = "text/html"
	if meta.Title == "" {
		meta.Title = fallback.Title
	}
	return meta
}

// extractMetadata walks the document for the title, meta description,
// and a plain-text preview of the body.
func extractMetadata(doc *html.Node) Metadata {
	var meta Metadata
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if meta.Title == "" {
					meta.Title = strings.TrimSpace(getTextContent(n))
				}
				return
			case "meta":
				name := strings.ToLower(getAttr(n, "name"))
				property := strings.ToLower(getAttr(n, "property"))
				if name == "description" || property == "og:description" {
					if meta.Description == "" {
						meta.Description = strings.TrimSpace(getAttr(n, "content"))
					}
				}
				return
			case "script", "style", "noscript":
				return
			}
		}

		if n.Type == html.TextNode && text.Len() < previewLimit {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(trimmed)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	preview := text.String()
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	meta.Content = preview
	return meta
}

// fallbackMetadata derives a title from the URL: hostname plus the
// last path segment, or the raw string if unparsable.
func fallbackMetadata(rawURL string) Metadata {
	meta := Metadata{Title: rawURL, Content: "", ContentType: "unknown"}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return meta
	}

	title := strings.TrimPrefix(u.Host, "www.")
	if segment := lastPathSegment(u.Path); segment != "" {
		title += ": " + strings.ReplaceAll(segment, "-", " ")
	}
	meta.Title = title
	return meta
}

func lastPathSegment(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return parts[len(parts)-1]
}

// getTextContent recursively extracts text from a node.
func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(getTextContent(c))
	}
	return sb.String()
}

// getAttr returns the value of the named attribute, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

// normalizeError simplifies verbose transport errors into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
