// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"yojanamitra/internal/common/logger"
	"yojanamitra/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// maxCatalogSize bounds a single List request. Catalogs are small reference
// data sets; anything larger should be paged by the caller.
const maxCatalogSize = 1000

type ElasticsearchProvider struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewElasticsearchProvider(client *elasticsearch.Client, index string, log logger.Logger) *ElasticsearchProvider {
	if index == "" {
		index = "schemes"
	}
	return &ElasticsearchProvider{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"catalog": "elasticsearch", "index": index}),
	}
}

type schemeDocument struct {
	models.Scheme
	Position int `json:"position"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func sortedQuery(query map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"query": query,
		"sort": []interface{}{
			map[string]interface{}{"position": map[string]interface{}{"order": "asc", "unmapped_type": "integer"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
	}
}

func (p *ElasticsearchProvider) List(ctx context.Context) ([]models.Scheme, error) {
	return p.search(ctx, sortedQuery(map[string]interface{}{"match_all": map[string]interface{}{}}))
}

func (p *ElasticsearchProvider) Search(ctx context.Context, query string) ([]models.Scheme, error) {
	return p.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^3", "description^2", "state"},
				"type":   "best_fields",
			},
		},
	})
}

func (p *ElasticsearchProvider) Get(ctx context.Context, id string) (*models.Scheme, error) {
	res, err := esapi.GetRequest{Index: p.index, DocumentID: id}.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrConnection, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %w: get %s: %s", ErrUnavailable, ErrSearch, id, res.Status())
	}

	var doc struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scheme %s: %w", id, err)
	}
	if !doc.Found {
		return nil, ErrNotFound
	}

	var s models.Scheme
	if err := json.Unmarshal(doc.Source, &s); err != nil {
		return nil, fmt.Errorf("decode scheme %s: %w", id, err)
	}
	return &s, nil
}

func (p *ElasticsearchProvider) search(ctx context.Context, body map[string]interface{}) ([]models.Scheme, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	size := maxCatalogSize
	res, err := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  bytes.NewReader(payload),
		Size:  &size,
	}.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrConnection, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: %w: search %s: %s %s", ErrUnavailable, ErrSearch, p.index, res.Status(), strings.TrimSpace(string(msg)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	schemes := make([]models.Scheme, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		var s models.Scheme
		if err := json.Unmarshal(hit.Source, &s); err != nil {
			p.logger.Warn("skipping undecodable scheme document", map[string]interface{}{
				"documentId": hit.ID,
				"error":      err.Error(),
			})
			continue
		}
		if s.ID == "" {
			s.ID = hit.ID
		}
		schemes = append(schemes, s)
	}
	return schemes, nil
}

// Index bulk-upserts schemes keyed by id, storing the slice index as position.
func (p *ElasticsearchProvider) Index(ctx context.Context, schemes []models.Scheme) error {
	if len(schemes) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i, s := range schemes {
		meta, _ := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_index": p.index, "_id": s.ID},
		})
		doc, err := json.Marshal(schemeDocument{Scheme: s, Position: i})
		if err != nil {
			return fmt.Errorf("encode scheme %s: %w", s.ID, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", ErrUnavailable, ErrConnection, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index %s: %s", p.index, res.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID    string          `json:"_id"`
			Error json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if result.Errors {
		var failed []string
		for _, item := range result.Items {
			for _, op := range item {
				if len(op.Error) > 0 && string(op.Error) != "null" {
					failed = append(failed, op.ID)
				}
			}
		}
		return fmt.Errorf("bulk index %s: %d documents failed: %s", p.index, len(failed), strings.Join(failed, ", "))
	}

	p.logger.Info("catalog indexed", map[string]interface{}{"count": len(schemes)})
	return nil
}
