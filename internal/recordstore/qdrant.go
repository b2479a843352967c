package recordstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"plantstock/internal/contextutil"
)

// Namespace for deriving point IDs. Qdrant only accepts UUIDs or unsigned
// integers as point IDs, so record keys (usernames, "item_1001", ...) are
// mapped to stable UUIDv5 values; the real key travels in the payload.
var pointIDNamespace = uuid.MustParse("7b8f0c2e-4a91-4d6f-9b3a-2e5c8d1f6a40")

const (
	keyField      = "_key"
	documentField = "_document"

	// Collections are vector-indexed by the engine even though nothing
	// here ever searches by similarity; every point carries this
	// placeholder vector.
	placeholderDim = 1
)

// QdrantStore is a DocumentStore backed by a Qdrant instance, used purely
// as a key/metadata store. Similarity search is not part of the contract.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a Qdrant-backed store. urlStr should be in the
// format "http://host:port" (e.g., "http://localhost:6333"); the gRPC port
// is derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create qdrant client: %v", ErrBackingStore, err)
	}

	return &QdrantStore{client: client}, nil
}

// EnsureCollection creates the collection if it does not exist. Existing
// collections are left untouched.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("%w: check collection existence: %v", ErrBackingStore, err)
	}
	if exists {
		return nil
	}

	logger.InfoContext(ctx, "creating collection", "collection", collection)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     placeholderDim,
			Distance: qdrant.Distance_Dot,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", ErrBackingStore, err)
	}
	return nil
}

// Upsert inserts or replaces the record at its key.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, rec Record) error {
	logger := contextutil.LoggerFromContext(ctx)

	payload := make(map[string]any, len(rec.Metadata)+2)
	for k, v := range rec.Metadata {
		payload[k] = v
	}
	payload[keyField] = rec.Key
	payload[documentField] = rec.Document

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID(collection, rec.Key)),
		Vectors: qdrant.NewVectors(placeholderVector()...),
		Payload: qdrant.NewValueMap(payload),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert record", "collection", collection, "key", rec.Key, "error", err)
		return fmt.Errorf("%w: upsert record: %v", ErrBackingStore, err)
	}
	return nil
}

// Get returns the record at key, or ErrNotFound.
func (s *QdrantStore) Get(ctx context.Context, collection, key string) (*Record, error) {
	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(pointID(collection, key))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get record: %v", ErrBackingStore, err)
	}
	if len(points) == 0 {
		return nil, ErrNotFound
	}
	rec := recordFromPayload(points[0].Payload)
	return &rec, nil
}

// Find returns all records whose metadata field equals value.
func (s *QdrantStore) Find(ctx context.Context, collection, field string, value any) ([]Record, error) {
	cond, err := matchCondition(field, value)
	if err != nil {
		return nil, err
	}
	filter := &qdrant.Filter{Must: []*qdrant.Condition{cond}}
	return s.scroll(ctx, collection, filter, 0)
}

// List returns up to limit records; limit <= 0 returns everything.
func (s *QdrantStore) List(ctx context.Context, collection string, limit int) ([]Record, error) {
	return s.scroll(ctx, collection, nil, limit)
}

// scroll reads records matching filter. When limit <= 0 the exact point
// count is used as the scroll limit so large collections are not silently
// truncated.
func (s *QdrantStore) scroll(ctx context.Context, collection string, filter *qdrant.Filter, limit int) ([]Record, error) {
	if limit <= 0 {
		count, err := s.client.Count(ctx, &qdrant.CountPoints{
			CollectionName: collection,
			Filter:         filter,
			Exact:          qdrant.PtrOf(true),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: count records: %v", ErrBackingStore, err)
		}
		if count == 0 {
			return []Record{}, nil
		}
		limit = int(count)
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scroll records: %v", ErrBackingStore, err)
	}

	records := make([]Record, 0, len(points))
	for _, point := range points {
		records = append(records, recordFromPayload(point.Payload))
	}
	return records, nil
}

// Delete removes the records at the given keys.
func (s *QdrantStore) Delete(ctx context.Context, collection string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]*qdrant.PointId, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, qdrant.NewID(pointID(collection, key)))
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return fmt.Errorf("%w: delete records: %v", ErrBackingStore, err)
	}
	return nil
}

// DeleteByFilter removes all records whose metadata field equals value.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, collection, field string, value any) error {
	cond, err := matchCondition(field, value)
	if err != nil {
		return err
	}
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{cond},
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: delete by filter: %v", ErrBackingStore, err)
	}
	return nil
}

// Count returns the exact number of records in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count records: %v", ErrBackingStore, err)
	}
	return int(count), nil
}

// Close closes the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func pointID(collection, key string) string {
	return uuid.NewSHA1(pointIDNamespace, []byte(collection+"/"+key)).String()
}

func placeholderVector() []float32 {
	return []float32{0}
}

// matchCondition builds an exact-match filter condition for the supported
// scalar metadata types.
func matchCondition(field string, value any) (*qdrant.Condition, error) {
	switch v := value.(type) {
	case string:
		return qdrant.NewMatch(field, v), nil
	case bool:
		return qdrant.NewMatchBool(field, v), nil
	case int:
		return qdrant.NewMatchInt(field, int64(v)), nil
	case int32:
		return qdrant.NewMatchInt(field, int64(v)), nil
	case int64:
		return qdrant.NewMatchInt(field, v), nil
	default:
		return nil, fmt.Errorf("unsupported filter value type %T for field %q", value, field)
	}
}

// recordFromPayload rebuilds a Record from a point payload, splitting the
// reserved key/document fields back out of the metadata.
func recordFromPayload(payload map[string]*qdrant.Value) Record {
	meta := convertPayloadToMap(payload)
	rec := Record{
		Key:      MetaString(meta, keyField),
		Document: MetaString(meta, documentField),
	}
	delete(meta, keyField)
	delete(meta, documentField)
	rec.Metadata = meta
	return rec
}

// convertPayloadToMap converts a Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to a Go any value.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
