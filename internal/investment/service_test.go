package investment

import (
	"context"
	"sync"
	"testing"
	"time"

	"debmarket/internal/offering"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Invest(ctx context.Context, userID, offeringID int, amountCents int64) (*Investment, error) {
	args := m.Called(ctx, userID, offeringID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Investment), args.Error(1)
}

func (m *MockRepository) GetPortfolio(ctx context.Context, userID int) ([]PortfolioItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PortfolioItem), args.Error(1)
}

func (m *MockRepository) GetOffering(ctx context.Context, offeringID int) (*offering.Offering, error) {
	args := m.Called(ctx, offeringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offering.Offering), args.Error(1)
}

func openOffering() *offering.Offering {
	return &offering.Offering{
		ID:                 5,
		Name:               "Debenture Serie A",
		AnnualRateBps:      1250,
		UnitPriceCents:     100000,
		MinInvestmentCents: 200000,
		TargetCents:        1000000,
		RaisedCents:        300000,
		MaturityDate:       time.Now().AddDate(2, 0, 0),
		Status:             offering.StatusOpen,
	}
}

func TestService_Invest(t *testing.T) {
	tests := []struct {
		name        string
		amountCents int64
		offering    func() *offering.Offering
		wantErr     error
	}{
		{
			name:        "valid order",
			amountCents: 200000,
			offering:    openOffering,
		},
		{
			name:        "exactly remaining capacity",
			amountCents: 700000,
			offering:    openOffering,
		},
		{
			name:        "non positive amount",
			amountCents: 0,
			offering:    openOffering,
			wantErr:     ErrInvalidAmount,
		},
		{
			name:        "below offering minimum",
			amountCents: 100000,
			offering:    openOffering,
			wantErr:     ErrBelowMinimum,
		},
		{
			name:        "not a multiple of unit price",
			amountCents: 250000,
			offering:    openOffering,
			wantErr:     ErrNotUnitMultiple,
		},
		{
			name:        "exceeds remaining capacity",
			amountCents: 800000,
			offering:    openOffering,
			wantErr:     ErrExceedsRemaining,
		},
		{
			name:        "closed offering",
			amountCents: 200000,
			offering: func() *offering.Offering {
				o := openOffering()
				o.Status = offering.StatusClosed
				return o
			},
			wantErr: ErrOfferingNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetOffering", mock.Anything, 5).Return(tt.offering(), nil)
			repo.On("Invest", mock.Anything, 1, 5, tt.amountCents).
				Return(&Investment{ID: 10, UserID: 1, OfferingID: 5, AmountCents: tt.amountCents}, nil)

			svc := NewService(repo, nil)
			inv, err := svc.Invest(context.Background(), 1, "u@example.com", 5, tt.amountCents)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, inv)
				repo.AssertNotCalled(t, "Invest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.amountCents, inv.AmountCents)
		})
	}
}

func TestService_Invest_RepositoryConflict(t *testing.T) {
	// The repository re-checks capacity under a row lock; its verdict wins
	// even when the pre-screen passed.
	repo := new(MockRepository)
	repo.On("GetOffering", mock.Anything, 5).Return(openOffering(), nil)
	repo.On("Invest", mock.Anything, 1, 5, int64(200000)).Return(nil, ErrExceedsRemaining)

	svc := NewService(repo, nil)
	inv, err := svc.Invest(context.Background(), 1, "u@example.com", 5, 200000)

	assert.ErrorIs(t, err, ErrExceedsRemaining)
	assert.Nil(t, inv)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	email string
	name  string
}

func (n *recordingNotifier) SendInvestmentConfirmation(ctx context.Context, email, offeringName string, amountCents int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.email = email
	n.name = offeringName
	return nil
}

func TestService_Invest_SendsConfirmation(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetOffering", mock.Anything, 5).Return(openOffering(), nil)
	repo.On("Invest", mock.Anything, 1, 5, int64(200000)).
		Return(&Investment{ID: 10, AmountCents: 200000}, nil)

	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier)

	_, err := svc.Invest(context.Background(), 1, "u@example.com", 5, 200000)
	assert.NoError(t, err)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		notifier.mu.Lock()
		done := notifier.calls == 1
		notifier.mu.Unlock()
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, "u@example.com", notifier.email)
	assert.Equal(t, "Debenture Serie A", notifier.name)
}

func TestService_Invest_UnknownOffering(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetOffering", mock.Anything, 99).Return(nil, ErrOfferingNotFound)

	svc := NewService(repo, nil)
	inv, err := svc.Invest(context.Background(), 1, "u@example.com", 99, 200000)

	assert.ErrorIs(t, err, ErrOfferingNotFound)
	assert.Nil(t, inv)
}
