package service

import (
	"context"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultEmbeddingModel is the Vertex publisher model used for chunk vectors.
const DefaultEmbeddingModel = "text-embedding-005"

// Embedding task types. Stored chunks and search queries must use the
// matching pair.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// VertexEmbedder uses a Vertex AI text embedding model to vectorise chunks.
type VertexEmbedder struct {
	client    *aiplatform.PredictionClient
	modelName string
	taskType  string
}

// NewVertexEmbedder creates a prediction client for cfg's project.
// cfg.Model selects the embedding model; "" uses DefaultEmbeddingModel.
func NewVertexEmbedder(ctx context.Context, cfg VertexConfig) (*VertexEmbedder, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex: project id is required")
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := aiplatform.NewPredictionClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	return &VertexEmbedder{
		client:    client,
		modelName: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", cfg.ProjectID, location, model),
		taskType:  taskDocument,
	}, nil
}

// ForQueries returns an embedder sharing v's client that embeds search
// queries instead of documents. Only v itself should be closed.
func (v *VertexEmbedder) ForQueries() *VertexEmbedder {
	q := *v
	q.taskType = taskQuery
	return &q
}

// Embed generates an embedding vector for text with the embedder's task type.
func (v *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	instance, err := structpb.NewStruct(map[string]interface{}{
		"content":   text,
		"task_type": v.taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	req := &aiplatformpb.PredictRequest{
		Endpoint:  v.modelName,
		Instances: []*structpb.Value{structpb.NewStructValue(instance)},
	}

	resp, err := v.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned")
	}

	return embeddingValues(resp.Predictions[0]), nil
}

// embeddingValues reads predictions[i].embeddings.values.
func embeddingValues(prediction *structpb.Value) []float32 {
	embeddings := prediction.GetStructValue().GetFields()["embeddings"].GetStructValue()
	values := embeddings.GetFields()["values"].GetListValue().GetValues()

	result := make([]float32, len(values))
	for i, v := range values {
		result[i] = float32(v.GetNumberValue())
	}
	return result
}

// Close releases the Vertex AI client resources
func (v *VertexEmbedder) Close() error {
	return v.client.Close()
}
