// Package es indexes tree records into Elasticsearch and queries them.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"contenthub/internal/config"
	"contenthub/internal/model"
	"contenthub/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES creates the client and makes sure the index exists.
func InitES(esCfg config.ElasticsearchConfig) error {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return err
	}
	ESClient = client
	return NewIndex(client, esCfg.IndexName).CreateIfNotExists(context.Background())
}

const indexMapping = `{
	"mappings": {
		"properties": {
			"id":          { "type": "keyword" },
			"kind":        { "type": "keyword" },
			"parent_id":   { "type": "keyword" },
			"name":        { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"keywords":    { "type": "text" },
			"description": { "type": "text" },
			"image":       { "type": "keyword", "index": false },
			"enabled":     { "type": "boolean" }
		}
	}
}`

// Index is one Elasticsearch index holding model.SearchDocument records.
type Index struct {
	client *elasticsearch.Client
	name   string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{client: client, name: name}
}

// CreateIfNotExists creates the index with the tree mapping when missing.
func (i *Index) CreateIfNotExists(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.name}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %q: %w", i.name, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", i.name)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %q: unexpected status %d", i.name, res.StatusCode)
	}

	res, err = i.client.Indices.Create(i.name,
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w", i.name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %q: %s", i.name, res.String())
	}
	log.Infof("index '%s' created", i.name)
	return nil
}

// Upsert indexes doc under its id, replacing any previous version.
func (i *Index) Upsert(ctx context.Context, doc model.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index document %s: %s", doc.ID, res.String())
	}
	return nil
}

// Delete removes the document with id. A missing document is not an error.
func (i *Index) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      i.name,
		DocumentID: id,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete document %s: %s", id, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64              `json:"_score"`
			Source model.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a multi_match over name, keywords and description.
func (i *Index) Search(ctx context.Context, text string, size int, enabledOnly bool) ([]model.SearchHit, error) {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     text,
					"fields":    []string{"name^3", "keywords^2", "description"},
					"fuzziness": "AUTO",
				},
			},
		},
	}
	if enabledOnly {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"enabled": true}},
		}
	}
	body, err := json.Marshal(map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
	})
	if err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.name),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search %q: %s", i.name, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	hits := make([]model.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, model.SearchHit{SearchDocument: h.Source, Score: h.Score})
	}
	return hits, nil
}
