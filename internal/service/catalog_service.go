package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/enrich"
	"github.com/TheSylus/Hmmm/internal/imagestore"
	"github.com/TheSylus/Hmmm/internal/metrics"
	"github.com/TheSylus/Hmmm/internal/share"
	"github.com/TheSylus/Hmmm/internal/store"
)

// itemRepository is the subset of store.ItemRepository that CatalogService
// requires.
type itemRepository interface {
	Create(ctx context.Context, draft domain.Draft) (*domain.Item, *store.PendingCreate, error)
	Update(ctx context.Context, id string, draft domain.Draft) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Item, error)
}

type CatalogService struct {
	items    itemRepository
	pipeline *enrich.Pipeline
	images   imagestore.Store
	logger   *slog.Logger
}

func NewCatalogService(items itemRepository, pipeline *enrich.Pipeline, images imagestore.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		items:    items,
		pipeline: pipeline,
		images:   images,
		logger:   logger,
	}
}

func (s *CatalogService) CreateItem(ctx context.Context, draft domain.Draft) (*domain.Item, *store.PendingCreate, error) {
	item, pending, err := s.items.Create(ctx, draft)
	if err != nil {
		return nil, nil, err
	}
	if pending != nil {
		s.logger.Info("create suspended on duplicates", "name", draft.Name, "duplicates", len(pending.Duplicates))
		return nil, pending, nil
	}
	metrics.ItemsCommitted.Inc()
	return item, nil, nil
}

// ConfirmCreate commits a create that was suspended on duplicate
// confirmation.
func (s *CatalogService) ConfirmCreate(ctx context.Context, pending *store.PendingCreate) (*domain.Item, error) {
	item, err := pending.Confirm(ctx)
	if err != nil {
		return nil, err
	}
	metrics.ItemsCommitted.Inc()
	return item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, draft domain.Draft) (*domain.Item, error) {
	return s.items.Update(ctx, id, draft)
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	// Best effort: the catalog entry is gone, an orphaned payload is only
	// wasted disk.
	if item != nil && item.Image != "" {
		if err := s.images.Delete(ctx, item.Image); err != nil {
			s.logger.Error("failed to delete image payload", "storage_key", item.Image, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *CatalogService) ListItems(ctx context.Context, filter domain.ListFilter) ([]domain.Item, error) {
	return s.items.List(ctx, filter)
}

// EnrichDraft runs the enrichment pipeline and accounts for its outcome.
func (s *CatalogService) EnrichDraft(ctx context.Context, req enrich.Request, onStage func(enrich.Stage)) enrich.Result {
	metrics.EnrichmentRuns.Inc()
	result := s.pipeline.Run(ctx, req, onStage)
	for _, w := range result.Warnings {
		metrics.LookupFailures.WithLabelValues(w.Source).Inc()
	}
	return result
}

// AttachImage stores the payload and points the item's image field at it,
// replacing and removing any previous payload.
func (s *CatalogService) AttachImage(ctx context.Context, id, mimeType string, r io.Reader) (*domain.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("failed to attach image: %w", store.ErrNotFound)
	}

	key, err := s.images.Save(ctx, "item", mimeType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	oldKey := item.Image
	draft := domain.FromItem(*item)
	draft.Image = key

	updated, err := s.items.Update(ctx, id, draft)
	if err != nil {
		_ = s.images.Delete(ctx, key)
		return nil, err
	}

	if oldKey != "" {
		if err := s.images.Delete(ctx, oldKey); err != nil {
			s.logger.Error("failed to delete replaced image payload", "storage_key", oldKey, "error", err)
		}
	}
	return updated, nil
}

func (s *CatalogService) GetImage(ctx context.Context, id string) (io.ReadCloser, string, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if item == nil || item.Image == "" {
		return nil, "", fmt.Errorf("failed to get image: %w", store.ErrNotFound)
	}
	return s.images.Get(ctx, item.Image)
}

// ShareItem encodes an item as a URL-safe share code.
func (s *CatalogService) ShareItem(ctx context.Context, id string) (string, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", fmt.Errorf("failed to share item: %w", store.ErrNotFound)
	}
	return share.Encode(*item)
}

// ImportShare decodes a share code into an importable draft.
func (s *CatalogService) ImportShare(code string) (domain.Draft, error) {
	return share.Decode(code)
}
