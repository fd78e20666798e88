package offering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateCompany(ctx context.Context, name, cnpj, sector string) (*Company, error) {
	args := m.Called(ctx, name, cnpj, sector)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Company), args.Error(1)
}

func (m *MockRepository) GetCompanyByID(ctx context.Context, id int) (*Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Company), args.Error(1)
}

func (m *MockRepository) CreateOffering(ctx context.Context, o *Offering) (*Offering, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Offering), args.Error(1)
}

func (m *MockRepository) ListOpen(ctx context.Context) ([]OfferingWithCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OfferingWithCompany), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*OfferingWithCompany, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OfferingWithCompany), args.Error(1)
}

func (m *MockRepository) Close(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkMatured(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func validRequest() CreateOfferingRequest {
	return CreateOfferingRequest{
		CompanyID:          1,
		Name:               "Debenture Serie A",
		AnnualRateBps:      1250,
		UnitPriceCents:     100000,
		MinInvestmentCents: 100000,
		TargetCents:        50000000,
		MaturityDate:       time.Now().AddDate(2, 0, 0).Format("2006-01-02"),
	}
}

func TestService_CreateOffering(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateOfferingRequest)
		wantErr error
	}{
		{
			name:   "valid offering",
			mutate: func(r *CreateOfferingRequest) {},
		},
		{
			name:    "zero rate",
			mutate:  func(r *CreateOfferingRequest) { r.AnnualRateBps = 0 },
			wantErr: ErrInvalidOffering,
		},
		{
			name:    "min investment below unit price",
			mutate:  func(r *CreateOfferingRequest) { r.MinInvestmentCents = 50000 },
			wantErr: ErrInvalidOffering,
		},
		{
			name:    "min investment not a multiple of unit price",
			mutate:  func(r *CreateOfferingRequest) { r.MinInvestmentCents = 150001 },
			wantErr: ErrInvalidOffering,
		},
		{
			name:    "target below min investment",
			mutate:  func(r *CreateOfferingRequest) { r.TargetCents = 0 },
			wantErr: ErrInvalidOffering,
		},
		{
			name: "maturity date in the past",
			mutate: func(r *CreateOfferingRequest) {
				r.MaturityDate = "2020-01-01"
			},
			wantErr: ErrInvalidOffering,
		},
		{
			name: "malformed maturity date",
			mutate: func(r *CreateOfferingRequest) {
				r.MaturityDate = "01/01/2030"
			},
			wantErr: ErrInvalidOffering,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetCompanyByID", mock.Anything, 1).Return(&Company{ID: 1, Name: "Acme"}, nil)
			repo.On("CreateOffering", mock.Anything, mock.AnythingOfType("*offering.Offering")).
				Return(&Offering{ID: 7, Status: StatusOpen}, nil)

			svc := NewService(repo)
			req := validRequest()
			tt.mutate(&req)

			created, err := svc.CreateOffering(context.Background(), req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, created)
				repo.AssertNotCalled(t, "CreateOffering", mock.Anything, mock.Anything)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, 7, created.ID)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_CreateOffering_UnknownCompany(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetCompanyByID", mock.Anything, 99).Return(nil, errors.New("sql: no rows in result set"))

	svc := NewService(repo)
	req := validRequest()
	req.CompanyID = 99

	created, err := svc.CreateOffering(context.Background(), req)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.Nil(t, created)
	repo.AssertNotCalled(t, "CreateOffering", mock.Anything, mock.Anything)
}

func TestService_CloseOffering(t *testing.T) {
	t.Run("existing offering", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(&OfferingWithCompany{}, nil)
		repo.On("Close", mock.Anything, 3).Return(nil)

		svc := NewService(repo)
		assert.NoError(t, svc.CloseOffering(context.Background(), 3))
		repo.AssertExpectations(t)
	})

	t.Run("unknown offering", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, 3).Return(nil, errors.New("sql: no rows in result set"))

		svc := NewService(repo)
		assert.ErrorIs(t, svc.CloseOffering(context.Background(), 3), ErrOfferingNotFound)
		repo.AssertNotCalled(t, "Close", mock.Anything, mock.Anything)
	})
}

func TestService_GetByID_NotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 42).Return(nil, errors.New("sql: no rows in result set"))

	svc := NewService(repo)
	got, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrOfferingNotFound)
	assert.Nil(t, got)
}
