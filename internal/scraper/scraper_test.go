package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<html><head><title>Page title</title></head><body>
<h1>Chipmakers Expand Capacity</h1>
<article>
<p>Chipmakers announced new fabrication plants across three continents this week.</p>
<p>Analysts expect the added capacity to ease shortages by the end of next year.</p>
<p>Subscribe to our newsletter for more stories like this one.</p>
<p>Short.</p>
</article>
</body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div>nothing here</div></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testExtractor() *Extractor {
	return NewExtractor(Options{Timeout: 2 * time.Second, Pause: time.Millisecond})
}

func TestExtract(t *testing.T) {
	srv := newPageServer(t)

	page, err := testExtractor().Extract(context.Background(), srv.URL+"/article")
	require.NoError(t, err)

	assert.Equal(t, "Chipmakers Expand Capacity", page.Title)
	assert.Contains(t, page.Content, "fabrication plants")
	assert.Contains(t, page.Content, "ease shortages")
	assert.NotContains(t, page.Content, "newsletter")
	assert.Equal(t, srv.URL+"/article", page.URL)
}

func TestExtract_Errors(t *testing.T) {
	srv := newPageServer(t)
	e := testExtractor()

	_, err := e.Extract(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = e.Extract(context.Background(), srv.URL+"/empty")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Extract(ctx, srv.URL+"/article")
	assert.Error(t, err)
}

func TestExtractMany(t *testing.T) {
	srv := newPageServer(t)
	urls := []string{srv.URL + "/missing", srv.URL + "/article", srv.URL + "/article?again=1"}

	got := testExtractor().ExtractMany(context.Background(), urls, 2, 50)
	require.Len(t, got, 1)
	assert.Contains(t, got, srv.URL+"/article")

	assert.Empty(t, testExtractor().ExtractMany(context.Background(), urls, 3, 10000))
}

func TestCleanContent(t *testing.T) {
	in := "First line without end\ncontinues here.\n\nCookie settings apply to this site.\nAnother full paragraph of text."
	got := cleanContent(in, 8000)
	assert.Equal(t, "First line without end continues here.\n\nAnother full paragraph of text.", got)

	long := strings.Repeat("A sentence that is long enough to keep.\n", 10)
	out := cleanContent(long, 100)
	assert.LessOrEqual(t, len(out), 100)
	assert.NotEmpty(t, out)

	assert.Equal(t, "", cleanContent("", 100))
}
