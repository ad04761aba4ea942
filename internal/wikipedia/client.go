package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pfrederiksen/legislator-ages/internal/httpclient"
	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

// DefaultAPIURL is the English Wikipedia action API endpoint.
const DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

var (
	// ErrPageNotFound is returned for missing pages and red links.
	ErrPageNotFound = errors.New("page not found")
	// ErrDisambiguation is returned when the title resolves to a disambiguation page.
	ErrDisambiguation = errors.New("disambiguation page")
	// ErrFieldMissing is returned when the page has no infobox birth_date.
	ErrFieldMissing = errors.New("infobox birth_date missing")
)

// Getter fetches a URL body.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client talks to a MediaWiki API.
type Client struct {
	http   Getter
	apiURL string
}

// NewClient creates a client for apiURL. An empty apiURL selects English
// Wikipedia.
func NewClient(http Getter, apiURL string) *Client {
	if http == nil {
		http = httpclient.New(httpclient.Options{})
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{http: http, apiURL: apiURL}
}

// TitleFromLink converts an article link such as "/wiki/Jane_O%27Doe" or a
// full https://en.wikipedia.org/wiki/... URL into a page title ("Jane O'Doe").
// Red links ("/w/index.php?title=...&redlink=1") are reported as
// ErrPageNotFound.
func TitleFromLink(link string) (string, error) {
	if strings.Contains(link, "redlink=1") {
		return "", fmt.Errorf("%w: red link %s", ErrPageNotFound, link)
	}
	i := strings.Index(link, "/wiki/")
	if i < 0 {
		return "", fmt.Errorf("not an article link: %q", link)
	}
	raw := link[i+len("/wiki/"):]
	if j := strings.IndexByte(raw, '#'); j >= 0 {
		raw = raw[:j]
	}
	title, err := url.PathUnescape(strings.ReplaceAll(raw, "_", " "))
	if err != nil {
		return "", fmt.Errorf("decoding link %q: %w", link, err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("not an article link: %q", link)
	}
	return title, nil
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type queryResponse struct {
	Error *apiError `json:"error"`
	Query struct {
		Pages []struct {
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Invalid   bool              `json:"invalid"`
			Extract   string            `json:"extract"`
			PageProps map[string]string `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

// Summary returns the plain-text introduction of the article, following
// redirects.
func (c *Client) Summary(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "extracts|pageprops")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	var resp queryResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}

	page := resp.Query.Pages[0]
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		return "", fmt.Errorf("%w: %s", ErrDisambiguation, title)
	}
	logger.Debug("Loaded page summary", logger.Fields{"title": page.Title})
	return page.Extract, nil
}

type parseResponse struct {
	Error *apiError `json:"error"`
	Parse struct {
		Title      string          `json:"title"`
		Wikitext   string          `json:"wikitext"`
		Properties json.RawMessage `json:"properties"`
	} `json:"parse"`
}

// BirthDate returns the raw birth_date value of the article's infobox, for
// example "{{birth date and age|1950|3|4}}".
func (c *Client) BirthDate(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "wikitext|properties")
	params.Set("section", "0")
	params.Set("redirects", "1")
	params.Set("page", title)

	var resp parseResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		if resp.Error.Code == "missingtitle" || resp.Error.Code == "invalidtitle" {
			return "", fmt.Errorf("%w: %s", ErrPageNotFound, title)
		}
		return "", fmt.Errorf("API error %s: %s", resp.Error.Code, resp.Error.Info)
	}
	if hasProperty(resp.Parse.Properties, "disambiguation") {
		return "", fmt.Errorf("%w: %s", ErrDisambiguation, title)
	}

	value, ok := InfoboxField(resp.Parse.Wikitext, "birth_date")
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldMissing, title)
	}
	return value, nil
}

func (c *Client) call(ctx context.Context, params url.Values, out interface{}) error {
	body, err := c.http.Get(ctx, c.apiURL+"?"+params.Encode())
	if err != nil {
		return fmt.Errorf("calling API: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing API response: %w", err)
	}
	return nil
}

// hasProperty accepts both the object form of page properties and the older
// [{"name": ..., "*": ...}] form.
func hasProperty(raw json.RawMessage, name string) bool {
	if len(raw) == 0 {
		return false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		_, ok := obj[name]
		return ok
	}
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, p := range list {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}
