package service

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/cache"
	"github.com/dailycrate/dailycrate/internal/domain/product"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
	"github.com/samber/lo"
)

// ProductService is the read-mostly catalog boundary consumed by the billing
// engine. Lookups are cached; the sweep hits this for every line item.
type ProductService interface {
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context) (*dto.ListProductsResponse, error)
}

type productService struct {
	ServiceParams
}

func NewProductService(params ServiceParams) ProductService {
	return &productService{
		ServiceParams: params,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:      req.Name,
		BasePrice: req.BasePrice,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.ProductRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return &dto.ProductResponse{Product: p}, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if id == "" {
		return nil, ierr.NewError("product id is required").
			WithHint("Please provide a valid product ID").
			Mark(ierr.ErrValidation)
	}

	if s.Cache != nil {
		if cached, found := s.Cache.Get(ctx, cache.PrefixProduct+id); found {
			if p, ok := cached.(*product.Product); ok {
				return &dto.ProductResponse{Product: p}, nil
			}
		}
	}

	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, cache.PrefixProduct+id, p, cache.DefaultExpiration)
	}
	return &dto.ProductResponse{Product: p}, nil
}

func (s *productService) ListProducts(ctx context.Context) (*dto.ListProductsResponse, error) {
	products, err := s.ProductRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(products, func(p *product.Product, _ int) *dto.ProductResponse {
		return &dto.ProductResponse{Product: p}
	})
	return &dto.ListProductsResponse{
		Products: responses,
		Total:    len(responses),
	}, nil
}
