// internal/catalog/elasticsearch_test.go
package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newESProvider(t *testing.T, handler http.HandlerFunc) *ElasticsearchProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewElasticsearchProvider(client, "schemes", logger.NewTestLogger(t))
}

func TestElasticsearchProvider_List(t *testing.T) {
	var body map[string]interface{}
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schemes/_search", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("size"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_id":"pm-kisan","_source":{"id":"pm-kisan","title":"PM Kisan","state":"All","position":0,"eligibility":{"income_max":200000}}},
			{"_id":"no-id","_source":{"title":"Untitled id","position":1}}
		]}}`)
	})

	schemes, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, schemes, 2)
	assert.Equal(t, "pm-kisan", schemes[0].ID)
	assert.Equal(t, "no-id", schemes[1].ID)
	assert.Contains(t, body, "sort")
	assert.Contains(t, body["query"], "match_all")
}

func TestElasticsearchProvider_Search(t *testing.T) {
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(raw), `"multi_match"`)
		assert.Contains(t, string(raw), `"title^3"`)
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"a","_source":{"id":"a","title":"Scholarship"}}]}}`)
	})

	schemes, err := Search(context.Background(), p, "scholarship")
	require.NoError(t, err)
	assert.Len(t, schemes, 1)
}

func TestElasticsearchProvider_Get(t *testing.T) {
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/schemes/_doc/pm-kisan":
			_, _ = io.WriteString(w, `{"found":true,"_source":{"id":"pm-kisan","title":"PM Kisan"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"found":false}`)
		}
	})

	s, err := p.Get(context.Background(), "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM Kisan", s.Title)

	_, err = p.Get(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestElasticsearchProvider_ServerError(t *testing.T) {
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"cluster_block_exception"}`)
	})

	_, err := p.List(context.Background())
	assert.True(t, IsUnavailable(err))
}

func TestElasticsearchProvider_Index(t *testing.T) {
	var lines []string
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_bulk", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("refresh"))
		scanner := bufio.NewScanner(r.Body)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		_, _ = io.WriteString(w, `{"errors":false,"items":[]}`)
	})

	err := p.Index(context.Background(), []models.Scheme{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 4)
	assert.True(t, strings.Contains(lines[0], `"_id":"a"`))
	assert.True(t, strings.Contains(lines[3], `"position":1`))
}

func TestElasticsearchProvider_IndexPartialFailure(t *testing.T) {
	p := newESProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":true,"items":[
			{"index":{"_id":"a","status":201}},
			{"index":{"_id":"b","status":400,"error":{"type":"mapper_parsing_exception"}}}
		]}`)
	})

	err := p.Index(context.Background(), []models.Scheme{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 documents failed: b")
}
