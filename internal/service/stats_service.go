package service

import (
	"context"
	"fmt"

	"tienda/internal/repository"
)

// Stats aggregates the admin dashboard counters. The three counts are
// independent queries; they are not read inside one transaction.
type Stats struct {
	Users      int64 `json:"users"`
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
}

// StatsService exposes dashboard aggregation.
type StatsService interface {
	Collect(ctx context.Context) (*Stats, error)
}

type statsService struct {
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewStatsService builds a StatsService over the three entity repositories.
func NewStatsService(userRepo repository.UserRepository, productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) StatsService {
	return &statsService{
		userRepo:     userRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *statsService) Collect(ctx context.Context) (*Stats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	categories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	return &Stats{Users: users, Products: products, Categories: categories}, nil
}
