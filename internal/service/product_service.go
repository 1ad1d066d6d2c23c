package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tienda/internal/cache"
	apperrors "tienda/internal/errors"
	"tienda/internal/model"
	"tienda/internal/repository"
)

const (
	productListCacheKey = "products:all"
	productListCacheTTL = time.Minute
)

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity *int
	ImageURL      string
	Rating        *float64
	SKU           *string
	CategoryID    *uint
}

// ProductService exposes catalog operations.
type ProductService interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService builds a ProductService with repository and cache.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{repo: repo, cache: cache}
}

// List returns the catalog with categories attached, served from cache when
// fresh.
func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	if data, _ := s.cache.Get(ctx, productListCacheKey); data != nil {
		var cached []model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		_ = s.cache.Set(ctx, productListCacheKey, payload, productListCacheTTL)
	}
	return products, nil
}

// Create validates and stores a new product, returning it with the category
// relation loaded.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	if input.Price.IsNegative() {
		return nil, apperrors.ErrInvalidPrice
	}
	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
		return nil, apperrors.ErrInvalidRating
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity", apperrors.ErrInvalidField)
	}

	product := &model.Product{
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		ImageURL:      input.ImageURL,
		Rating:        input.Rating,
		SKU:           input.SKU,
		CategoryID:    input.CategoryID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	_ = s.cache.Delete(ctx, productListCacheKey)

	created, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	return created, nil
}

// Update applies a partial update: only keys present in fields are written,
// and the single UPDATE it issues leaves every other column alone.
func (s *productService) Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Product, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, err
	}

	updates, err := buildProductUpdates(fields)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	_ = s.cache.Delete(ctx, productListCacheKey)

	return s.repo.FindByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProductNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	_ = s.cache.Delete(ctx, productListCacheKey)
	return nil
}

// buildProductUpdates maps the JSON body of a partial update onto columns.
// Keys absent from fields stay untouched; an explicit null clears nullable
// columns; null on a required column is rejected. Unknown keys are ignored.
func buildProductUpdates(fields map[string]interface{}) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	for key, value := range fields {
		switch key {
		case "name":
			s, ok := value.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("%w: name", apperrors.ErrInvalidField)
			}
			updates["name"] = s
		case "description":
			if value == nil {
				updates["description"] = ""
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: description", apperrors.ErrInvalidField)
			}
			updates["description"] = s
		case "image_url":
			if value == nil {
				updates["image_url"] = ""
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: image_url", apperrors.ErrInvalidField)
			}
			updates["image_url"] = s
		case "price":
			price, err := decimalValue(value)
			if err != nil {
				return nil, fmt.Errorf("%w: price", apperrors.ErrInvalidField)
			}
			if price.IsNegative() {
				return nil, apperrors.ErrInvalidPrice
			}
			updates["price"] = price
		case "stock_quantity":
			if value == nil {
				updates["stock_quantity"] = nil
				continue
			}
			n, ok := intValue(value)
			if !ok || n < 0 {
				return nil, fmt.Errorf("%w: stock_quantity", apperrors.ErrInvalidField)
			}
			updates["stock_quantity"] = n
		case "rating":
			if value == nil {
				updates["rating"] = nil
				continue
			}
			f, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: rating", apperrors.ErrInvalidField)
			}
			if f < 0 || f > 5 {
				return nil, apperrors.ErrInvalidRating
			}
			updates["rating"] = f
		case "sku":
			if value == nil {
				updates["sku"] = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: sku", apperrors.ErrInvalidField)
			}
			updates["sku"] = s
		case "category_id":
			if value == nil {
				updates["category_id"] = nil
				continue
			}
			n, ok := intValue(value)
			if !ok || n <= 0 {
				return nil, fmt.Errorf("%w: category_id", apperrors.ErrInvalidField)
			}
			updates["category_id"] = uint(n)
		}
	}
	return updates, nil
}

// decimalValue accepts the two shapes JSON clients send prices in.
func decimalValue(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %T", value)
	}
}

// intValue converts a JSON number to int, rejecting fractional values.
func intValue(value interface{}) (int, bool) {
	f, ok := value.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
