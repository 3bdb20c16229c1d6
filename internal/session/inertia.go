package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PinnedInertiaVersion is the asset version the site served when the header
// set was captured. The server answers 409 once its assets move on.
const PinnedInertiaVersion = "0d60a0cef251f76c204b2a1cd16b0d69"

var errNoPageObject = errors.New("no inertia page object")

// InertiaVersion reads the version field of the page object that Inertia
// embeds in the root element's data-page attribute.
func InertiaVersion(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse bootstrap html: %w", err)
	}

	raw, ok := doc.Find("[data-page]").First().Attr("data-page")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", errNoPageObject
	}

	var page struct {
		Component string `json:"component"`
		Version   any    `json:"version"`
	}
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return "", fmt.Errorf("decode data-page: %w", err)
	}

	switch v := page.Version.(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		return fmt.Sprintf("%v", v), nil
	}
	return "", errNoPageObject
}
