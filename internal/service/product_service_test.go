package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "tienda/internal/errors"
	"tienda/internal/model"
)

func TestProductService_Create(t *testing.T) {
	stock := 5
	badRating := 7.5

	tests := []struct {
		name          string
		input         CreateProductInput
		setupMock     func(*MockProductRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			input: CreateProductInput{
				Name:          "VitC",
				Price:         decimal.NewFromFloat(10.5),
				StockQuantity: &stock,
			},
			setupMock: func(m *MockProductRepository) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Product")).Run(func(args mock.Arguments) {
					args.Get(1).(*model.Product).ID = 1
				}).Return(nil)
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.Product{
					ID:    1,
					Name:  "VitC",
					Price: decimal.NewFromFloat(10.5),
				}, nil)
			},
		},
		{
			name: "negative price rejected",
			input: CreateProductInput{
				Name:  "Broken",
				Price: decimal.NewFromFloat(-1),
			},
			setupMock:     func(m *MockProductRepository) {},
			expectedError: apperrors.ErrInvalidPrice,
		},
		{
			name: "rating out of range rejected",
			input: CreateProductInput{
				Name:   "Overrated",
				Price:  decimal.NewFromFloat(1),
				Rating: &badRating,
			},
			setupMock:     func(m *MockProductRepository) {},
			expectedError: apperrors.ErrInvalidRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			tt.setupMock(mockRepo)

			svc := NewProductService(mockRepo, nil)
			product, err := svc.Create(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, product)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, product)
				assert.Equal(t, tt.input.Name, product.Name)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_Update_OnlySuppliedColumns(t *testing.T) {
	existing := &model.Product{ID: 3, Name: "VitC", Price: decimal.NewFromFloat(10.5)}

	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", mock.Anything, uint(3)).Return(existing, nil)

	var applied map[string]interface{}
	mockRepo.On("UpdateFields", mock.Anything, uint(3), mock.Anything).Run(func(args mock.Arguments) {
		applied = args.Get(2).(map[string]interface{})
	}).Return(nil)

	svc := NewProductService(mockRepo, nil)
	_, err := svc.Update(context.Background(), 3, map[string]interface{}{"price": 9.99})
	assert.NoError(t, err)

	// A price-only update must not touch any other column.
	assert.Len(t, applied, 1)
	price, ok := applied["price"].(decimal.Decimal)
	assert.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromFloat(9.99)))
}

func TestProductService_Update_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProductService(mockRepo, nil)
	_, err := svc.Update(context.Background(), 42, map[string]interface{}{"price": 1.0})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestProductService_Delete_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProductService(mockRepo, nil)
	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestBuildProductUpdates(t *testing.T) {
	tests := []struct {
		name          string
		fields        map[string]interface{}
		expected      map[string]interface{}
		expectedError error
	}{
		{
			name:     "null clears nullable columns",
			fields:   map[string]interface{}{"sku": nil, "rating": nil, "category_id": nil, "stock_quantity": nil},
			expected: map[string]interface{}{"sku": nil, "rating": nil, "category_id": nil, "stock_quantity": nil},
		},
		{
			name:     "unknown keys ignored",
			fields:   map[string]interface{}{"favorite_color": "red"},
			expected: map[string]interface{}{},
		},
		{
			name:          "null name rejected",
			fields:        map[string]interface{}{"name": nil},
			expectedError: apperrors.ErrInvalidField,
		},
		{
			name:          "negative price rejected",
			fields:        map[string]interface{}{"price": -3.5},
			expectedError: apperrors.ErrInvalidPrice,
		},
		{
			name:          "string stock rejected",
			fields:        map[string]interface{}{"stock_quantity": "many"},
			expectedError: apperrors.ErrInvalidField,
		},
		{
			name:          "fractional stock rejected",
			fields:        map[string]interface{}{"stock_quantity": 2.5},
			expectedError: apperrors.ErrInvalidField,
		},
		{
			name:     "string price accepted",
			fields:   map[string]interface{}{"price": "12.40"},
			expected: map[string]interface{}{"price": decimal.RequireFromString("12.40")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates, err := buildProductUpdates(tt.fields)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, updates, len(tt.expected))
			for key, want := range tt.expected {
				got, present := updates[key]
				assert.True(t, present, key)
				if wantDec, ok := want.(decimal.Decimal); ok {
					assert.True(t, wantDec.Equal(got.(decimal.Decimal)))
					continue
				}
				assert.Equal(t, want, got, key)
			}
		})
	}
}
