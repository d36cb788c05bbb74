package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/johnquangdev/talk-tracer/pkg/config"
)

// Document is the searchable projection of a meeting
type Document struct {
	MeetingID       string `json:"meeting_id"`
	TranscribedText string `json:"transcribed_text"`
	Summary         string `json:"summary"`
}

// Hit is one search match
type Hit struct {
	MeetingID string  `json:"meeting_id"`
	Score     float64 `json:"score"`
}

// ElasticIndex pushes and queries meeting documents in Elasticsearch
type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticIndex creates a client for the configured host and index
func NewElasticIndex(cfg *config.ElasticsearchConfig) (*ElasticIndex, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Host},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticIndex{client: client, index: cfg.Index}, nil
}

// NewElasticIndexWithClient wraps an existing client
func NewElasticIndexWithClient(client *elasticsearch.Client, index string) *ElasticIndex {
	return &ElasticIndex{client: client, index: index}
}

// Index stores doc under the meeting id, replacing any previous version
func (e *ElasticIndex) Index(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode search document: %w", err)
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(doc.MeetingID),
		e.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("failed to index meeting %s: %w", doc.MeetingID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string   `json:"_id"`
			Score  float64  `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a full-text query over transcript and summary, best match first
func (e *ElasticIndex) Search(ctx context.Context, query string, size int) ([]Hit, error) {
	if size <= 0 {
		size = 10
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    query,
				"fields":   []string{"transcribed_text", "summary"},
				"operator": "or",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, responseError("search", res)
	}

	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) ([]Hit, error) {
	var sr searchResponse
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		id := h.Source.MeetingID
		if id == "" {
			id = h.ID
		}
		hits = append(hits, Hit{MeetingID: id, Score: h.Score})
	}
	return hits, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch %s returned %s: %s", op, res.Status(), string(body))
}
