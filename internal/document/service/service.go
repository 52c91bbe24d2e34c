package service

import (
	"context"
	"time"

	"github.com/gogotex/docmanager/internal/document"
	"github.com/gogotex/docmanager/internal/document/repository"
	"github.com/gogotex/docmanager/pkg/logger"
	"github.com/gogotex/docmanager/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Service defines the document operations used by the handler layer.
type Service interface {
	Save(ctx context.Context, d document.Document) (document.Document, error)
	FindByID(ctx context.Context, id string) (document.Document, bool, error)
	Search(ctx context.Context, req document.SearchRequest) ([]document.Document, error)
	Backend() string
}

// Repository is the contract every store backend satisfies.
type Repository interface {
	Save(ctx context.Context, d document.Document) (document.Document, error)
	FindByID(ctx context.Context, id string) (document.Document, bool, error)
	Search(ctx context.Context, req document.SearchRequest) ([]document.Document, error)
}

// NewMemoryService returns a Service backed by a fresh in-memory store.
func NewMemoryService() Service {
	return New("memory", memoryRepo{repository.NewMemoryRepo()})
}

// NewRedisService returns a Service backed by Redis under the given key prefix.
func NewRedisService(client *redis.Client, prefix string) Service {
	return New("redis", repository.NewRedisRepo(client, prefix))
}

// NewMongoService returns a Service backed by the "documents" collection of db.
// Caller is responsible for creating the client and disconnecting it.
func NewMongoService(db *mongo.Database) Service {
	return New("mongo", repository.NewMongoRepo(db.Collection("documents"), db.Collection("counters")))
}

// New wraps any repository with logging and metrics.
func New(backend string, repo Repository) Service {
	return &documentService{backend: backend, repo: repo}
}

type documentService struct {
	backend string
	repo    Repository
}

func (s *documentService) Backend() string { return s.backend }

func (s *documentService) Save(ctx context.Context, d document.Document) (document.Document, error) {
	s.count("save")
	saved, err := s.repo.Save(ctx, d)
	if err != nil {
		s.fail("save", err)
		return document.Document{}, err
	}
	logger.Debugf("document saved: id=%s requested_id=%q backend=%s", saved.ID, d.ID, s.backend)
	return saved, nil
}

func (s *documentService) FindByID(ctx context.Context, id string) (document.Document, bool, error) {
	s.count("find")
	d, ok, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.fail("find", err)
		return document.Document{}, false, err
	}
	logger.Debugf("document lookup: id=%s found=%v backend=%s", id, ok, s.backend)
	return d, ok, nil
}

func (s *documentService) Search(ctx context.Context, req document.SearchRequest) ([]document.Document, error) {
	s.count("search")
	start := time.Now()
	out, err := s.repo.Search(ctx, req)
	if err != nil {
		s.fail("search", err)
		return nil, err
	}
	metrics.SearchResults.WithLabelValues(s.backend).Observe(float64(len(out)))
	logger.Debugf("document search: results=%d took=%s backend=%s", len(out), time.Since(start), s.backend)
	return out, nil
}

func (s *documentService) count(op string) {
	metrics.DocumentOperations.WithLabelValues(op, s.backend).Inc()
}

func (s *documentService) fail(op string, err error) {
	metrics.DocumentOperationErrors.WithLabelValues(op, s.backend).Inc()
	logger.Warnf("document %s failed on %s: %v", op, s.backend, err)
}

// memoryRepo adapts the in-memory store, whose operations cannot fail, to
// Repository.
type memoryRepo struct {
	repo *repository.MemoryRepo
}

func (m memoryRepo) Save(_ context.Context, d document.Document) (document.Document, error) {
	return m.repo.Save(d), nil
}

func (m memoryRepo) FindByID(_ context.Context, id string) (document.Document, bool, error) {
	d, ok := m.repo.FindByID(id)
	return d, ok, nil
}

func (m memoryRepo) Search(_ context.Context, req document.SearchRequest) ([]document.Document, error) {
	return m.repo.Search(req), nil
}
