package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/commonModels"
	"github.com/akolanti/PDFChat/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
	dimension      uint64
	logger         *logger_i.Logger
}

// NewQdrantStore dials qdrant over gRPC. The client is closed when ctx ends.
func NewQdrantStore(ctx context.Context, cfg config.QdrantConfig, collectionName string, dimension int32) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")
	if collectionName == "" {
		return nil, errors.New("empty collection name")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		APIKey:        cfg.APIKey,
		UseTLS:        cfg.UseTLS,
		PoolSize:      uint(config.QdrantPoolSize),
		KeepAliveTime: int(config.QdrantKeepAliveTime.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	holder := &ClientHolder{
		QObj:           client,
		collectionName: collectionName,
		dimension:      uint64(dimension),
		logger:         logger.With("collection", collectionName),
	}
	go holder.closeQdrant(ctx)
	return holder, nil
}

func (db *ClientHolder) closeQdrant(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
		return
	}
	db.logger.Info("Closed Qdrant")
}

func (db *ClientHolder) EnsureIndex(ctx context.Context) error {
	exists, err := db.QObj.CollectionExists(ctx, db.collectionName)
	if err != nil {
		return classify("qdrant.CollectionExists", err)
	}
	if exists {
		return nil
	}

	db.logger.Info("Creating collection", "dimension", db.dimension)
	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return classify("qdrant.CreateCollection", err)
	}

	// filtered probes and deletes go through this field
	_, err = db.QObj.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: db.collectionName,
		FieldName:      config.SourceFileKey,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	return classify("qdrant.CreateFieldIndex", err)
}

func (db *ClientHolder) Upsert(ctx context.Context, chunks []commonModels.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return appErrors.Internal("qdrant.Upsert", fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors)))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload, err := qdrant.TryValueMap(toPayload(chunk))
		if err != nil {
			return appErrors.Internal("qdrant.Upsert", err)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payload,
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	return classify("qdrant.Upsert", err)
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int, filter commonModels.Filter) ([]commonModels.Chunk, error) {
	if k <= 0 {
		return []commonModels.Chunk{}, nil
	}
	log := db.logger.FromContext(ctx)

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         toFilter(filter),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, classify("qdrant.Query", err)
	}

	chunks := make([]commonModels.Chunk, 0, len(result))
	for _, hit := range result {
		chunks = append(chunks, fromPayload(hit.GetId().GetUuid(), hit.GetPayload()))
	}
	log.Debug("Qdrant search", "k", k, "matches", len(chunks))
	return chunks, nil
}

func (db *ClientHolder) DeleteBySource(ctx context.Context, sourceFile string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points:         qdrant.NewPointsSelectorFilter(toFilter(commonModels.Filter{config.SourceFileKey: sourceFile})),
		Wait:           qdrant.PtrOf(true),
	})
	return classify("qdrant.Delete", err)
}

func toFilter(filter commonModels.Filter) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, qdrant.NewMatchKeyword(key, value))
	}
	return &qdrant.Filter{Must: conditions}
}

func toPayload(chunk commonModels.Chunk) map[string]any {
	payload := make(map[string]any, len(chunk.PageMetadata)+2)
	maps.Copy(payload, chunk.PageMetadata)
	payload[config.ContentKey] = chunk.Text
	payload[config.SourceFileKey] = chunk.SourceFile
	return payload
}

func fromPayload(id string, payload map[string]*qdrant.Value) commonModels.Chunk {
	chunk := commonModels.Chunk{
		Id:           id,
		Text:         payload[config.ContentKey].GetStringValue(),
		SourceFile:   payload[config.SourceFileKey].GetStringValue(),
		PageMetadata: make(map[string]any),
	}
	for key, value := range payload {
		if key == config.ContentKey || key == config.SourceFileKey {
			continue
		}
		chunk.PageMetadata[key] = fromValue(value)
	}
	return chunk
}

func fromValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}

// classify turns gRPC failures into typed errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.DeadlineExceeded:
			return appErrors.New(appErrors.KindTimeout, op, "vector store timed out", err)
		case codes.InvalidArgument:
			return appErrors.New(appErrors.KindInternal, op, "vector store rejected the request", err)
		}
	}
	return appErrors.Upstream(op, err)
}
