package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/panjiggm/syntegra-app-sub000/internal/models"
)

// ParticipantDoc is the indexed projection of a session participant.
type ParticipantDoc struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	NIK       string `json:"nik,omitempty"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

func DocFromParticipant(p *models.SessionParticipant) ParticipantDoc {
	return ParticipantDoc{
		ID:        p.ID.String(),
		SessionID: p.SessionID.String(),
		NIK:       p.NIK,
		Name:      p.Name,
		Phone:     p.Phone,
		Status:    p.Status,
	}
}

func IndexParticipant(ctx context.Context, es *elasticsearch.Client, index string, doc ParticipantDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal doc: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index error: %s", res.Status())
	}
	return nil
}

func DeleteParticipant(ctx context.Context, es *elasticsearch.Client, index, id string) error {
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete error: %s", res.Status())
	}
	return nil
}

func SearchParticipants(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []ParticipantDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "nik", "phone"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: query error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source ParticipantDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]ParticipantDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
