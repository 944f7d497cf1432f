package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

// GetQuadrantClient returns the process-wide qdrant connection, or nil when
// the server is unreachable. Individual sessions carve out their own
// collections via NewIndex.
func GetQuadrantClient(ctx context.Context, host string, port int) *qdrant.Client {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		client, err := qdrant.NewClient(&qdrant.Config{
			Host:     host,
			Port:     port,
			UseTLS:   config.QdrantUseTLS,
			PoolSize: uint(config.QdrantPoolSize),
		})
		if err != nil {
			logger.Error("could not instantiate qdrant client", "error", err)
			return
		}
		quadrantInstance = client
		go closeQdrant(ctx, client)
	})
	return quadrantInstance
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

// Index is a qdrant-backed vector index scoped to one collection. A session
// owns exactly one collection; Clear drops it wholesale so there is never a
// partially populated index.
type Index struct {
	client     *qdrant.Client
	collection string
}

func NewIndex(client *qdrant.Client, sessionId string) *Index {
	return &Index{
		client:     client,
		collection: config.QdrantCollectionPrefix + sessionId,
	}
}

func (db *Index) Add(ctx context.Context, entries []commonModels.IndexEntry) error {
	if err := db.ensureCollection(ctx); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(e.Chunk.ChunkId),
			Vectors: qdrant.NewVectors(e.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       e.Chunk.Text,
				"offset":        e.Chunk.Offset,
				"chunk_order":   e.Chunk.Order,
				"chunk_id":      e.Chunk.ChunkId,
				"doc_name":      e.Chunk.Doc.Name,
				"source_doc_id": e.Chunk.Doc.Id,
				"ingested_at":   e.Chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *Index) Search(ctx context.Context, vector []float32, k int) ([]commonModels.ScoredChunk, error) {
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return nil, err
	}
	if !exists || k <= 0 {
		return nil, nil
	}

	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.Error("Error querying Qdrant", "collection", db.collection, "error", err)
		return nil, err
	}

	hits := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, commonModels.ScoredChunk{
			Score: hit.Score,
			Chunk: commonModels.DocChunk{
				ChunkId: hit.Payload["chunk_id"].GetStringValue(),
				Text:    hit.Payload["content"].GetStringValue(),
				Offset:  int(hit.Payload["offset"].GetIntegerValue()),
				Order:   int(hit.Payload["chunk_order"].GetIntegerValue()),
				Doc: commonModels.Document{
					Id:         hit.Payload["source_doc_id"].GetStringValue(),
					Name:       hit.Payload["doc_name"].GetStringValue(),
					IngestedAt: time.Unix(hit.Payload["ingested_at"].GetIntegerValue(), 0),
				},
			},
		})
	}
	return hits, nil
}

func (db *Index) Clear(ctx context.Context) error {
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return db.client.DeleteCollection(ctx, db.collection)
}

func (db *Index) ensureCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
