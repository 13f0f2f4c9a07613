package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// chunkVectorIndex is the Atlas Vector Search index over issue_chunks.embedding.
const chunkVectorIndex = "issue_chunk_index"

// RecordMongo stores processed issues and their chunks.
//
// Expected schema:
//
//	issue_records
//	  { _id: "owner/name#number", repo, record: {issue_number, summary, links, chunks}, updated_at }
//
//	issue_chunks
//	  { _id: "owner/name#number:index", repo, issue_number, chunk_index, text, embedding?: []float32 }
type RecordMongo struct {
	recordCol *mongo.Collection
	chunkCol  *mongo.Collection
	log       *zap.Logger
}

// NewRecordRepository wires the "issue_records" and "issue_chunks" collections.
func NewRecordRepository(db *mongo.Database, log *zap.Logger) *RecordMongo {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordMongo{
		recordCol: db.Collection("issue_records"),
		chunkCol:  db.Collection("issue_chunks"),
		log:       log,
	}
}

// FindRecord returns a record by its id ("owner/name#number").
// When the document is not found, it returns an empty StoredRecord and a nil
// error so callers can decide to regenerate it.
func (r *RecordMongo) FindRecord(ctx context.Context, id string) (models.StoredRecord, error) {
	var rec models.StoredRecord
	err := r.recordCol.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StoredRecord{}, nil
	}
	if err != nil {
		return models.StoredRecord{}, fmt.Errorf("find record %s: %w", id, err)
	}
	return rec, nil
}

// UpsertRecord inserts or replaces the record with the same _id.
func (r *RecordMongo) UpsertRecord(ctx context.Context, rec models.StoredRecord) error {
	_, err := r.recordCol.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	r.log.Debug("record upserted", zap.String("id", rec.ID), zap.Int("chunks", len(rec.Record.Chunks)))
	return nil
}

// ReplaceChunks upserts every chunk of one issue and deletes chunks left over
// from an earlier, longer split.
func (r *RecordMongo) ReplaceChunks(ctx context.Context, repo string, issueNumber int, chunks []models.StoredChunk) error {
	if len(chunks) > 0 {
		writes := make([]mongo.WriteModel, len(chunks))
		for i, c := range chunks {
			writes[i] = mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": c.ID}).
				SetReplacement(c).
				SetUpsert(true)
		}
		if _, err := r.chunkCol.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("write chunks of %s#%d: %w", repo, issueNumber, err)
		}
	}

	res, err := r.chunkCol.DeleteMany(ctx, bson.M{
		"repo":         repo,
		"issue_number": issueNumber,
		"chunk_index":  bson.M{"$gte": len(chunks)},
	})
	if err != nil {
		return fmt.Errorf("prune chunks of %s#%d: %w", repo, issueNumber, err)
	}
	if res.DeletedCount > 0 {
		r.log.Debug("stale chunks pruned", zap.String("repo", repo), zap.Int("issue_number", issueNumber), zap.Int64("deleted", res.DeletedCount))
	}
	return nil
}

// SearchChunks performs a K‑NN search across chunk embeddings, optionally
// restricted to one repo. It requires an Atlas Vector Search index named
// chunkVectorIndex on "embedding" with "repo" declared as a filter field.
func (r *RecordMongo) SearchChunks(ctx context.Context, repo string, queryVec []float32, k int) ([]models.ChunkHit, error) {
	cur, err := r.chunkCol.Aggregate(ctx, chunkSearchPipeline(repo, queryVec, k))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cur.Close(ctx)

	hits := []models.ChunkHit{}
	if err := cur.All(ctx, &hits); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}
	return hits, nil
}

// chunkSearchPipeline builds the $vectorSearch + $project aggregation.
func chunkSearchPipeline(repo string, queryVec []float32, k int) mongo.Pipeline {
	search := bson.D{
		{Key: "index", Value: chunkVectorIndex},
		{Key: "queryVector", Value: queryVec},
		{Key: "path", Value: "embedding"},
		{Key: "numCandidates", Value: k * 10},
		{Key: "limit", Value: k},
	}
	if repo != "" {
		search = append(search, bson.E{Key: "filter", Value: bson.M{"repo": repo}})
	}

	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "repo", Value: 1},
			{Key: "issue_number", Value: 1},
			{Key: "chunk_index", Value: 1},
			{Key: "text", Value: 1},
			{Key: "score", Value: bson.M{"$meta": "vectorSearchScore"}},
		}}},
	}
}
