// Package docs loads the knowledge document the assistant is scoped to.
// The text is read once at startup, either from a local file or by
// fetching a documentation page and extracting its visible text.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/net/html"
)

var ErrNoSourceConfigured = errors.New("no documentation source configured")

func Load(ctx context.Context, filePath, pageURL string) (string, error) {
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read documentation file %s: %w", filePath, err)
		}
		return string(raw), nil
	}
	if pageURL != "" {
		return fetchPageText(ctx, pageURL)
	}
	return "", ErrNoSourceConfigured
}

func fetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch documentation page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}
	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse documentation page %s: %w", pageURL, err)
	}
	return text, nil
}

// ExtractText walks an HTML document and collects its visible text,
// skipping script and style subtrees.
func ExtractText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(b.String()), nil
}
