package service

import (
	"context"

	"github.com/dailycrate/dailycrate/internal/api/dto"
	"github.com/dailycrate/dailycrate/internal/domain/address"
	ierr "github.com/dailycrate/dailycrate/internal/errors"
	"github.com/dailycrate/dailycrate/internal/types"
)

// AddressService is the thin delivery-address boundary
type AddressService interface {
	CreateAddress(ctx context.Context, req *dto.CreateAddressRequest) (*dto.AddressResponse, error)
	GetAddress(ctx context.Context, id string) (*dto.AddressResponse, error)
	ListAddresses(ctx context.Context, userID string) ([]*dto.AddressResponse, error)
}

type addressService struct {
	ServiceParams
}

func NewAddressService(params ServiceParams) AddressService {
	return &addressService{
		ServiceParams: params,
	}
}

func (s *addressService) CreateAddress(ctx context.Context, req *dto.CreateAddressRequest) (*dto.AddressResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := &address.Address{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ADDRESS),
		UserID:     req.UserID,
		Label:      req.Label,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.AddressRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return &dto.AddressResponse{Address: a}, nil
}

func (s *addressService) GetAddress(ctx context.Context, id string) (*dto.AddressResponse, error) {
	if id == "" {
		return nil, ierr.NewError("address id is required").
			WithHint("Please provide a valid address ID").
			Mark(ierr.ErrValidation)
	}

	a, err := s.AddressRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AddressResponse{Address: a}, nil
}

func (s *addressService) ListAddresses(ctx context.Context, userID string) ([]*dto.AddressResponse, error) {
	addresses, err := s.AddressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.AddressResponse, 0, len(addresses))
	for _, a := range addresses {
		responses = append(responses, &dto.AddressResponse{Address: a})
	}
	return responses, nil
}
