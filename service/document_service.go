package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/elastic/go-elasticsearch/v8"
	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var documentCategories = map[model.DocumentCategory]bool{
	model.CategoryContract:      true,
	model.CategoryInvoice:       true,
	model.CategoryEnvironmental: true,
	model.CategoryGrant:         true,
	model.CategoryMeeting:       true,
	model.CategoryCaltrans:      true,
	model.CategoryOther:         true,
}

// StorageOptions points the S3 client at Supabase storage.
type StorageOptions struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// DocumentService stores project documents in object storage and keeps a
// search index of their metadata. Either backend may be absent: uploads then
// fail with ErrStorageDisabled and search falls back to the database.
type DocumentService struct {
	s3Client s3iface.S3API
	esClient *elasticsearch.Client
	db       *gorm.DB
	bucket   string
	index    string
	logger   *zap.Logger
}

// NewS3Client builds a path-style S3 client for the Supabase endpoint.
func NewS3Client(opts StorageOptions) (s3iface.S3API, error) {
	if opts.Region == "" || opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("missing required S3 configuration")
	}
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(opts.Region),
		Endpoint:         aws.String(opts.Endpoint),
		DisableSSL:       aws.Bool(false),
		Credentials:      credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return s3.New(sess), nil
}

// NewSearchClient returns nil when no URL is configured.
func NewSearchClient(url string) (*elasticsearch.Client, error) {
	if url == "" {
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{url}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	return client, nil
}

func NewDocumentService(db *gorm.DB, s3Client s3iface.S3API, esClient *elasticsearch.Client, bucket, index string, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index == "" {
		index = "documents"
	}
	return &DocumentService{
		s3Client: s3Client,
		esClient: esClient,
		db:       db,
		bucket:   bucket,
		index:    index,
		logger:   logger,
	}
}

// ObjectKey is the storage key for an uploaded file: upload time in unix
// seconds followed by the filename with spaces replaced by dashes.
func ObjectKey(unix int64, filename string) string {
	return fmt.Sprintf("%d-%s", unix, strings.ReplaceAll(filename, " ", "-"))
}

// UploadFromForm stores a multipart file and records it.
func (s *DocumentService) UploadFromForm(ctx context.Context, tenantID, userID string, in DocumentInput, file multipart.File, header *multipart.FileHeader) (*model.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		in.Title = header.Filename
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	path, err := s.UploadFile(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return nil, err
	}
	in.StoragePath = path
	return s.CreateDocument(ctx, tenantID, userID, in)
}

// UploadFile puts the file in the bucket and returns its storage path,
// "documents/<key>".
func (s *DocumentService) UploadFile(ctx context.Context, filename, mimeType string, body io.Reader) (string, error) {
	if s.s3Client == nil || s.bucket == "" {
		return "", ErrStorageDisabled
	}
	if strings.TrimSpace(filename) == "" {
		return "", invalid("file is required")
	}
	fileBytes, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	key := ObjectKey(timeNow().Unix(), filename)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(mimeType),
	}); err != nil {
		s.logger.Error("S3 upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload file to storage: %w", err)
	}
	s.logger.Info("file uploaded", zap.String("key", key), zap.Int("bytes", len(fileBytes)))
	return "documents/" + key, nil
}

type DocumentInput struct {
	ProjectID   *string                `json:"project_id" form:"project_id"`
	Title       string                 `json:"title" form:"title"`
	Category    model.DocumentCategory `json:"category" form:"category"`
	StoragePath string                 `json:"storage_path" form:"storage_path"`
}

func (in *DocumentInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if len([]rune(in.Title)) < 2 {
		return invalid("title must be at least 2 characters")
	}
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if !documentCategories[in.Category] {
		return invalid("invalid category %q", in.Category)
	}
	return nil
}

// CreateDocument records metadata for an uploaded file and indexes it.
// Indexing failures are logged and do not fail the call.
func (s *DocumentService) CreateDocument(ctx context.Context, tenantID, userID string, in DocumentInput) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.StoragePath) == "" {
		return nil, invalid("storage_path is required")
	}

	doc := model.Document{
		TenantID:    tenantID,
		ProjectID:   trimmedOrNil(in.ProjectID),
		Title:       in.Title,
		Category:    in.Category,
		StoragePath: strings.TrimSpace(in.StoragePath),
	}
	if userID != "" {
		doc.UploadedBy = &userID
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.indexDocument(ctx, doc)
	s.logger.Info("document recorded", zap.String("tenant_id", tenantID), zap.String("path", doc.StoragePath))
	return &doc, nil
}

func (s *DocumentService) indexDocument(ctx context.Context, doc model.Document) {
	if s.esClient == nil {
		return
	}
	body, err := json.Marshal(doc)
	if err != nil {
		s.logger.Warn("failed to marshal document for indexing", zap.Error(err))
		return
	}
	res, err := s.esClient.Index(
		s.index,
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(doc.ID),
		s.esClient.Index.WithContext(ctx),
	)
	if err != nil {
		s.logger.Warn("Elasticsearch indexing error", zap.String("document_id", doc.ID), zap.Error(err))
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		s.logger.Warn("Elasticsearch indexing failed", zap.String("document_id", doc.ID), zap.String("status", res.Status()))
	}
}

func (s *DocumentService) ListDocuments(ctx context.Context, tenantID string) ([]model.Document, error) {
	var docs []model.Document
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at desc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// SearchDocuments runs a tenant-filtered full-text query against the index,
// or a title match in the database when no index is available.
func (s *DocumentService) SearchDocuments(ctx context.Context, tenantID, query string) ([]model.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListDocuments(ctx, tenantID)
	}
	if s.esClient != nil {
		docs, err := s.searchIndex(ctx, tenantID, query)
		if err == nil {
			return docs, nil
		}
		s.logger.Warn("search index unavailable; falling back to database", zap.Error(err))
	}

	var docs []model.Document
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(title) LIKE ?", tenantID, "%"+strings.ToLower(query)+"%").
		Order("created_at desc").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DocumentService) searchIndex(ctx context.Context, tenantID, query string) ([]model.Document, error) {
	searchQuery := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"title^2", "category", "storage_path"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"tenant_id": tenantID},
				},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.index),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source model.Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]model.Document, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if hit.Source.TenantID != tenantID {
			continue
		}
		docs = append(docs, hit.Source)
	}
	return docs, nil
}
