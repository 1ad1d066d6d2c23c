package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tienda/internal/cache"
	apperrors "tienda/internal/errors"
	"tienda/internal/model"
	"tienda/internal/repository"
)

const (
	categoryListCacheKey = "categories:all"
	categoryListCacheTTL = 5 * time.Minute
)

// CategoryService exposes category operations.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
	cache       *cache.Client
}

// NewCategoryService builds a CategoryService. The product repository backs
// the referenced-products check on delete.
func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository, cache *cache.Client) CategoryService {
	return &categoryService{repo: repo, productRepo: productRepo, cache: cache}
}

// List returns categories ordered by name, served from cache when fresh.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	if data, _ := s.cache.Get(ctx, categoryListCacheKey); data != nil {
		var cached []model.Category
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(categories); err == nil {
		_ = s.cache.Set(ctx, categoryListCacheKey, payload, categoryListCacheTTL)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	category := &model.Category{Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	_ = s.cache.Delete(ctx, categoryListCacheKey)
	return category, nil
}

// Delete removes a category. A category still referenced by products is not
// deletable; the caller must move or delete those products first.
func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return err
	}

	inUse, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	_ = s.cache.Delete(ctx, categoryListCacheKey)
	_ = s.cache.Delete(ctx, productListCacheKey)
	return nil
}
