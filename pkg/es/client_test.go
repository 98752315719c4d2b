package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contenthub/internal/model"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newFakeCluster(t *testing.T, respond func(r *http.Request) (int, string)) (*Index, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		status, payload := respond(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(client, "tree"), &seen
}

func TestUpsertSendsDocument(t *testing.T) {
	idx, seen := newFakeCluster(t, func(r *http.Request) (int, string) {
		return http.StatusCreated, `{"result":"created"}`
	})

	err := idx.Upsert(context.Background(), model.SearchDocument{ID: "abc", Kind: model.KindCategory, Name: "Shop", Enabled: true})
	require.NoError(t, err)
	require.Len(t, *seen, 1)
	assert.Equal(t, http.MethodPut, (*seen)[0].method)
	assert.Equal(t, "/tree/_doc/abc", (*seen)[0].path)
	assert.Contains(t, (*seen)[0].body, `"name":"Shop"`)
}

func TestDeleteIgnoresMissingDocument(t *testing.T) {
	idx, _ := newFakeCluster(t, func(r *http.Request) (int, string) {
		return http.StatusNotFound, `{"result":"not_found"}`
	})
	assert.NoError(t, idx.Delete(context.Background(), "gone"))
}

func TestSearchFiltersDisabledForAnonymous(t *testing.T) {
	idx, seen := newFakeCluster(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[{"_score":1.5,"_source":{"id":"1","kind":"content","name":"Hammer","enabled":true}}]}}`
	})

	hits, err := idx.Search(context.Background(), "hammer", 5, true)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Hammer", hits[0].Name)
	assert.Equal(t, 1.5, hits[0].Score)

	require.Len(t, *seen, 1)
	assert.True(t, strings.HasSuffix((*seen)[0].path, "/tree/_search"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte((*seen)[0].body), &body))
	assert.Contains(t, (*seen)[0].body, `"enabled":true`)
	assert.EqualValues(t, 5, body["size"])
}

func TestCreateIfNotExistsCreatesMissingIndex(t *testing.T) {
	idx, seen := newFakeCluster(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodHead {
			return http.StatusNotFound, ``
		}
		return http.StatusOK, `{"acknowledged":true}`
	})

	require.NoError(t, idx.CreateIfNotExists(context.Background()))
	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodPut, (*seen)[1].method)
	assert.Contains(t, (*seen)[1].body, `"parent_id"`)
}
