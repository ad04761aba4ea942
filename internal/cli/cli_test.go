package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/legislator-ages/internal/histogram"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
)

const senatorsPage = `<html><body>
<table class="wikitable sortable" id="senators">
<tr><th>State</th><th>Senator</th><th>Party</th><th>Born</th></tr>
<tr>
  <td rowspan="2">Ohio</td>
  <td><a href="/wiki/Jane_Doe">Jane Doe</a></td>
  <td>Democratic</td>
  <td><span style="display:none">(1950-03-04)</span>March 4, 1950 (age 73)</td>
</tr>
<tr>
  <td><a href="/wiki/John_Roe">John Roe</a></td>
  <td>Republican</td>
  <td><span style="display:none">(1961-08-04)</span>August 4, 1961 (age 61)</td>
</tr>
</table>
</body></html>`

// execute runs the CLI with a temporary data directory and no .env file.
func execute(t *testing.T, dataDir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{"--env-file=", "--data-dir", dataDir}
	code = run(context.Background(), append(base, args...), &out, &errOut)
	return out.String(), errOut.String(), code
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSources(t *testing.T) {
	out, _, code := execute(t, t.TempDir(), "sources", "--format", "json")
	require.Equal(t, ExitSuccess, code)

	var result SourcesResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	keys := make([]string, 0, len(result.Sources))
	for _, src := range result.Sources {
		keys = append(keys, src.Key)
	}
	assert.Equal(t, []string{"ca-reps", "ca-senators", "us-reps", "us-senators"}, keys)

	out, _, code = execute(t, t.TempDir(), "sources")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "us-senators")
	assert.Contains(t, out, "born-column")
}

func TestParse(t *testing.T) {
	dir := t.TempDir()

	out, _, code := execute(t, dir, "parse", "--now", "2024-01-01", "{{birth date and age|1950|3|4}}")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Dialect: BirthDateAndAge")
	assert.Contains(t, out, "Date:    1950-03-04")
	assert.Contains(t, out, "Age:     73 (as of 2024-01-01)")

	out, _, code = execute(t, dir, "parse", "--format", "json", "--now", "2024-01-01", "March 4, 1950")
	require.Equal(t, ExitSuccess, code)
	var result ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "FreeText", result.Dialect)
	assert.Equal(t, "1950-03-04", result.Date)
	assert.Equal(t, 73, result.Age)

	out, _, code = execute(t, dir, "parse", "--format", "json", "--now", "2024-01-01", "--retirement", "January 1, 2034")
	require.Equal(t, ExitSuccess, code)
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 64, result.Age)
	assert.Empty(t, result.Date)
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"unparsable", []string{"parse", "sometime in spring"}},
		{"bad now", []string{"parse", "--now", "01/01/2024", "1950"}},
		{"retirement in the past", []string{"parse", "--now", "2024-01-01", "--retirement", "January 1, 2000"}},
		{"no argument", []string{"parse"}},
		{"bad format", []string{"parse", "--format", "xml", "1950"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := execute(t, dir, tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestScrapeAgesHistogram(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, t.TempDir(), "senators.html", senatorsPage)

	out, _, code := execute(t, dir, "scrape", "--us-senators", "--html-file", page, "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var scraped ScrapeResults
	require.NoError(t, json.Unmarshal([]byte(out), &scraped))
	require.Len(t, scraped.Results, 1)
	first := scraped.Results[0]
	assert.Equal(t, "us-senators", first.Source)
	assert.Equal(t, 2, first.Rows)
	assert.True(t, first.FirstRun)
	assert.Nil(t, first.Changes)
	assert.FileExists(t, filepath.Join(dir, "us_senators", "senators.json"))
	assert.FileExists(t, filepath.Join(dir, "us_senators", "senators.msgpack"))

	out, _, code = execute(t, dir, "scrape", "--source", "us-senators", "--html-file", page)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "No membership changes")

	out, _, code = execute(t, dir, "ages", "--source", "us-senators", "--now", "2024-01-01", "--sort", "age", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var aged AgesResult
	require.NoError(t, json.Unmarshal([]byte(out), &aged))
	assert.Equal(t, 2, aged.Report.Total)
	assert.Equal(t, 2, aged.Report.WithAge)
	require.Len(t, aged.Records, 2)
	assert.Equal(t, "John Roe", aged.Records[0].Name)
	assert.Equal(t, 62, *aged.Records[0].Age)
	assert.Equal(t, 73, *aged.Records[1].Age)
	require.Len(t, aged.Report.Discrepancies, 1)
	assert.Equal(t, "John Roe", aged.Report.Discrepancies[0].Name)
	assert.Equal(t, 1, aged.Report.Discrepancies[0].Delta)
	assert.FileExists(t, filepath.Join(dir, "us_senators", "senators-with-ages.json"))

	out, _, code = execute(t, dir, "histogram", "--source", "us-senators", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var hist HistogramResult
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Equal(t, "United States Senate", hist.Title)
	assert.Equal(t, 2, hist.Total)
	assert.Equal(t, []histogram.Row{
		{Label: "under 40", Min: 0, Max: 40, Count: 0},
		{Label: "40 - 49", Min: 40, Max: 50, Count: 0},
		{Label: "50 - 59", Min: 50, Max: 60, Count: 0},
		{Label: "60 - 69", Min: 60, Max: 70, Count: 1},
		{Label: "70+", Min: 70, Max: 100, Count: 1},
	}, hist.Rows)

	out, _, code = execute(t, dir, "histogram", "--source", "us-senators", "--title", "Senate", "--y-label", "# Senators")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Senate\n"))
	assert.Contains(t, out, "# Senators")
	assert.Contains(t, out, "Total: 2")
}

func TestScrape_MembershipChanges(t *testing.T) {
	dir := t.TempDir()
	pages := t.TempDir()
	before := writeFile(t, pages, "before.html", senatorsPage)
	after := writeFile(t, pages, "after.html", strings.Replace(senatorsPage, "John Roe", "Pat Poe", 1))

	_, _, code := execute(t, dir, "scrape", "--source", "us-senators", "--html-file", before)
	require.Equal(t, ExitSuccess, code)

	out, _, code := execute(t, dir, "scrape", "--source", "us-senators", "--html-file", after, "--format", "json")
	require.Equal(t, ExitSuccess, code)
	var scraped ScrapeResults
	require.NoError(t, json.Unmarshal([]byte(out), &scraped))
	changes := scraped.Results[0].Changes
	require.NotNil(t, changes)
	require.Len(t, changes.Added, 1)
	require.Len(t, changes.Removed, 1)
	assert.Equal(t, "Pat Poe", changes.Added[0].Name)
	assert.Equal(t, "John Roe", changes.Removed[0].Name)
}

func TestScrape_Errors(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, t.TempDir(), "senators.html", senatorsPage)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing selected", []string{"scrape"}, "no source selected"},
		{"unknown source", []string{"scrape", "--source", "mars"}, "mars"},
		{"html file with two sources", []string{"scrape", "--us-senators", "--us-reps", "--html-file", page}, "exactly one source"},
		{"missing html file", []string{"scrape", "--us-senators", "--html-file", filepath.Join(dir, "nope.html")}, "opening HTML file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := execute(t, dir, tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestAges_NotScraped(t *testing.T) {
	_, stderr, code := execute(t, t.TempDir(), "ages", "--source", "us-senators")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "run 'legislator-ages scrape --source us-senators' first")

	_, stderr, code = execute(t, t.TempDir(), "histogram", "--source", "us-senators")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "snapshot not found")
}

const repsPage = `<html><body>
<table class="wikitable">
<tr><th>Riding</th><th>Name</th><th>Party</th></tr>
<tr><td>Avalon</td><td><a href="/wiki/Jane_Doe">Jane Doe</a></td><td>Liberal</td></tr>
<tr><td>Burin</td><td><a href="/wiki/Pat_Poe">Pat Poe</a></td><td>Conservative</td></tr>
</table>
</body></html>`

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/List", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(repsPage))
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("action") == "parse" && q.Get("page") == "Jane Doe":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"parse": map[string]interface{}{
					"title":    "Jane Doe",
					"wikitext": "{{Infobox officeholder\n| name = Jane Doe\n| birth_date = {{birth date and age|1970|12|31}}\n}}",
				},
			})
		case q.Get("action") == "parse":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"parse": map[string]interface{}{
					"title":    q.Get("page"),
					"wikitext": "{{Infobox officeholder\n| name = " + q.Get("page") + "\n}}",
				},
			})
		case q.Get("action") == "query" && q.Get("titles") == "Pat Poe":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{"pages": []interface{}{
					map[string]interface{}{"title": "Pat Poe", "extract": "Pat Poe (born in 1972) is a Canadian politician."},
				}},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAges_Infobox(t *testing.T) {
	server := newWikiServer(t)
	dir := t.TempDir()
	cfg := writeFile(t, t.TempDir(), "config.yaml", fmt.Sprintf(`
sources:
  - key: test-reps
    name: Test House
    url: %s/wiki/List
    with_links: true
    dir: test_reps
    file: reps
    name_column: Name
    age_strategy: infobox
    link_column: Name
`, server.URL))
	common := []string{"--config", cfg, "--api-url", server.URL + "/w/api.php"}

	_, _, code := execute(t, dir, append(common, "scrape", "--source", "test-reps")...)
	require.Equal(t, ExitSuccess, code)

	out, stderr, code := execute(t, dir, append(common, "ages", "--source", "test-reps", "--now", "2024-01-01", "--sort", "name", "--format", "json")...)
	require.Equal(t, ExitSuccess, code, stderr)

	var aged AgesResult
	require.NoError(t, json.Unmarshal([]byte(out), &aged))
	assert.Equal(t, 2, aged.Report.WithAge)
	require.Len(t, aged.Records, 2)

	jane, pat := aged.Records[0], aged.Records[1]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, 53, *jane.Age)
	assert.Equal(t, "BirthDateAndAge", jane.Dialect)
	assert.Equal(t, "Pat Poe", pat.Name)
	assert.Equal(t, 52, *pat.Age)
	assert.Equal(t, "FreeText", pat.Dialect)

	assert.FileExists(t, filepath.Join(dir, "page_cache.json"))
}

func TestSortRecords(t *testing.T) {
	age := func(n int) *int { return &n }
	records := []*legislator.Record{
		{Name: "bravo", Age: age(60)},
		{Name: "Alpha"},
		{Name: "charlie", Age: age(45)},
	}

	names := func(rs []*legislator.Record) []string {
		out := make([]string, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{"bravo", "Alpha", "charlie"}, names(sortRecords(records, SortTable)))
	assert.Equal(t, []string{"Alpha", "bravo", "charlie"}, names(sortRecords(records, SortName)))
	assert.Equal(t, []string{"charlie", "bravo", "Alpha"}, names(sortRecords(records, SortAge)))
	assert.Equal(t, []string{"bravo", "charlie", "Alpha"}, names(sortRecords(records, SortAgeDesc)))
	assert.Equal(t, "bravo", records[0].Name, "input is not reordered")

	_, err := parseSortOrder("oldest")
	assert.Error(t, err)
}
