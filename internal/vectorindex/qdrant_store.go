package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore is an alternate Store backend for deployments that already
// run a Qdrant cluster instead of embedding sqlite-vec in-process.
// Qdrant only accepts UUID or integer point IDs, so the string chunk_id
// is deterministically mapped to a UUIDv5 and the original string is
// kept in the payload for round-tripping.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dims       int
}

func NewQdrantStore(dsn, collection string, dims int) (*QdrantStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("vectorindex: qdrant collection name is required")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: parse qdrant dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "6334"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: invalid qdrant port: %w", err)
	}

	cfg := &qdrant.Config{Host: host, Port: portNum}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: create qdrant client: %w", err)
	}

	s := &QdrantStore{client: client, collection: collection, dims: dims}
	if err := s.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("vectorindex: check qdrant collection: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func chunkPointID(chunkID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String())
}

func (s *QdrantStore) Exists(ctx context.Context, chunkID string) (bool, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{chunkPointID(chunkID)},
	})
	if err != nil {
		return false, fmt.Errorf("vectorindex: qdrant exists: %w", err)
	}
	return len(points) > 0, nil
}

func (s *QdrantStore) Add(ctx context.Context, records []Record) error {
	for start := 0; start < len(records); start += AddBatchSize {
		end := start + AddBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.addBatch(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *QdrantStore) addBatch(ctx context.Context, records []Record) error {
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		exists, err := s.Exists(ctx, r.ChunkID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		vec := make([]float32, len(r.Embedding))
		copy(vec, r.Embedding)
		payload := qdrant.NewValueMap(map[string]any{
			"chunk_id":       r.ChunkID,
			"text":           r.Text,
			"company":        r.Company,
			"company_id":     r.CompanyID,
			"year":           r.Year,
			"quarter":        r.Quarter,
			"filing_type":    r.FilingType,
			"section":        r.Section,
			"parent_section": r.ParentSection,
		})
		points = append(points, &qdrant.PointStruct{
			Id:      chunkPointID(r.ChunkID),
			Vectors: qdrant.NewVectorsDense(vec),
			Payload: payload,
		})
	}
	if len(points) == 0 {
		return nil
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("vectorindex: qdrant upsert: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, embedding []float32, filter Filter, k int) ([]Match, error) {
	if k <= 0 {
		k = 10
	}
	var must []*qdrant.Condition
	if filter.CompanyID != "" {
		must = append(must, qdrant.NewMatch("company_id", filter.CompanyID))
	}
	if filter.Year != "" {
		must = append(must, qdrant.NewMatch("year", filter.Year))
	}
	var qf *qdrant.Filter
	if len(must) > 0 {
		qf = &qdrant.Filter{Must: must}
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	limit := uint64(k)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         qf,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorindex: qdrant query: %w", err)
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		var m Match
		m.Score = float64(hit.Score)
		if hit.Payload != nil {
			m.ChunkID = stringValue(hit.Payload["chunk_id"])
			m.Text = stringValue(hit.Payload["text"])
			m.Company = stringValue(hit.Payload["company"])
			m.CompanyID = stringValue(hit.Payload["company_id"])
			m.Year = stringValue(hit.Payload["year"])
			m.Quarter = stringValue(hit.Payload["quarter"])
			m.FilingType = stringValue(hit.Payload["filing_type"])
			m.Section = stringValue(hit.Payload["section"])
			m.ParentSection = stringValue(hit.Payload["parent_section"])
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func stringValue(v *qdrant.Value) string {
	if v == nil {
		return ""
	}
	return v.GetStringValue()
}

func (s *QdrantStore) ClearCompany(ctx context.Context, companyID string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("company_id", companyID)},
		}),
	})
	if err != nil {
		return fmt.Errorf("vectorindex: qdrant clear company: %w", err)
	}
	return nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
