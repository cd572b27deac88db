package conversion

import (
	"context"
	"errors"
	"testing"
	"time"

	"virdispay/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Testify mocks (shared across the package tests) ---

type MockPriceClient struct{ mock.Mock }

func (m *MockPriceClient) GetSpotPrices(ctx context.Context, assets []domain.CryptoCurrency, fiats []domain.FiatCurrency) (domain.RateTable, error) {
	args := m.Called(ctx, assets, fiats)
	table, _ := args.Get(0).(domain.RateTable)
	return table, args.Error(1)
}

type MockPayoutProvider struct{ mock.Mock }

func (m *MockPayoutProvider) Submit(ctx context.Context, tx *domain.ConversionTransaction) (domain.PayoutResult, error) {
	args := m.Called(ctx, tx)
	result, _ := args.Get(0).(domain.PayoutResult)
	return result, args.Error(1)
}

type MockConversionRepository struct{ mock.Mock }

func (m *MockConversionRepository) Create(ctx context.Context, tx *domain.ConversionTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockConversionRepository) Update(ctx context.Context, tx *domain.ConversionTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockConversionRepository) GetByID(ctx context.Context, conversionID string) (*domain.ConversionTransaction, error) {
	args := m.Called(ctx, conversionID)
	tx, _ := args.Get(0).(*domain.ConversionTransaction)
	return tx, args.Error(1)
}

func (m *MockConversionRepository) ListByMerchant(ctx context.Context, merchantID string, filter domain.HistoryFilter) ([]domain.ConversionTransaction, int, error) {
	args := m.Called(ctx, merchantID, filter)
	items, _ := args.Get(0).([]domain.ConversionTransaction)
	return items, args.Int(1), args.Error(2)
}

func (m *MockConversionRepository) StatsByMerchant(ctx context.Context, merchantID string, since time.Time) (domain.ConversionStats, error) {
	args := m.Called(ctx, merchantID, since)
	stats, _ := args.Get(0).(domain.ConversionStats)
	return stats, args.Error(1)
}

func (m *MockConversionRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

type MockSettingsRepository struct{ mock.Mock }

func (m *MockSettingsRepository) Get(ctx context.Context, merchantID string) (*domain.ConversionSettings, error) {
	args := m.Called(ctx, merchantID)
	s, _ := args.Get(0).(*domain.ConversionSettings)
	return s, args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, settings *domain.ConversionSettings) (*domain.ConversionSettings, error) {
	args := m.Called(ctx, settings)
	s, _ := args.Get(0).(*domain.ConversionSettings)
	return s, args.Error(1)
}

func (m *MockSettingsRepository) SetAutoConvert(ctx context.Context, merchantID string, enabled bool) (*domain.ConversionSettings, error) {
	args := m.Called(ctx, merchantID, enabled)
	s, _ := args.Get(0).(*domain.ConversionSettings)
	return s, args.Error(1)
}

func (m *MockSettingsRepository) Deactivate(ctx context.Context, merchantID string) error {
	return m.Called(ctx, merchantID).Error(0)
}

type MockSettingsCache struct{ mock.Mock }

func (m *MockSettingsCache) Get(merchantID string) (*domain.ConversionSettings, bool) {
	args := m.Called(merchantID)
	s, _ := args.Get(0).(*domain.ConversionSettings)
	return s, args.Bool(1)
}

func (m *MockSettingsCache) Set(merchantID string, settings *domain.ConversionSettings) {
	m.Called(merchantID, settings)
}

func (m *MockSettingsCache) Invalidate(merchantID string) {
	m.Called(merchantID)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) GetByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*domain.Payment)
	return p, args.Error(1)
}

func (m *MockPaymentRepository) ListUnconverted(ctx context.Context) ([]domain.Payment, error) {
	args := m.Called(ctx)
	payments, _ := args.Get(0).([]domain.Payment)
	return payments, args.Error(1)
}

// --- Fixtures ---

func usdTable() domain.RateTable {
	return domain.RateTable{
		domain.USDC: {domain.USD: 1.0, domain.EUR: 0.85},
		domain.BTC:  {domain.USD: 60000.0, domain.EUR: 51000.0},
	}
}

func activeSettings(merchantID string) *domain.ConversionSettings {
	return &domain.ConversionSettings{
		MerchantID:            merchantID,
		AutoConvertEnabled:    true,
		ConversionThreshold:   50,
		PreferredFiatCurrency: domain.USD,
		Banking: domain.BankingInfo{
			AccountType:       domain.AccountTypeChecking,
			BankName:          "First Green Bank",
			AccountNumber:     "12345678",
			RoutingNumber:     "021000021",
			AccountHolderName: "Green Leaf LLC",
		},
		Limits: domain.ConversionLimits{
			SlippageTolerancePercent: 1,
			MinConversionAmount:      10,
			MaxConversionAmount:      10000,
		},
		SupportedCryptos: []domain.SupportedCrypto{{Symbol: domain.USDC, Enabled: true}},
		IsActive:         true,
	}
}

func completedPayment(id, merchantID string, amount string) *domain.Payment {
	return &domain.Payment{
		ID:          id,
		MerchantID:  merchantID,
		Amount:      decimal.RequireFromString(amount),
		Currency:    domain.USDC,
		Status:      "completed",
		CompletedAt: time.Now().Add(-time.Hour),
	}
}

func newTestService(client *MockPriceClient, payout *MockPayoutProvider, repo *MockConversionRepository) *Service {
	rates := NewRateCache(client, time.Minute)
	return NewService(rates, payout, repo, domain.ProviderInternal)
}

// --- InitiateConversion ---

func TestService_InitiateConversion_CompletedOnApprovedPayout(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	ctx := context.Background()
	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(usdTable(), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
	payout.On("Submit", mock.Anything, mock.Anything).Return(domain.PayoutResult{Success: true, PayoutID: "po_test"}, nil).Once()

	settings := activeSettings("m1")
	tx, err := svc.InitiateConversion(ctx, "m1", completedPayment("pay1", "m1", "100"), settings, domain.MethodAutomatic)

	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, tx.Status)
	require.NotEmpty(t, tx.ConversionID)
	require.Equal(t, "m1", tx.MerchantID)
	require.Equal(t, "pay1", tx.OriginalPaymentID)
	require.InDelta(t, 100.0, tx.FiatAmount, 1e-9)
	require.InDelta(t, 1.0, tx.ExchangeRate, 1e-9)
	require.Equal(t, domain.FeeBreakdown{Conversion: 0.50, Network: 2.50, Banking: 0.25, Total: 3.25}, tx.Fees)
	require.InDelta(t, 96.75, tx.NetAmount(), 1e-9)
	require.Equal(t, settings.Banking, tx.BankingSnapshot)

	require.NotNil(t, tx.Payout)
	require.Equal(t, "po_test", tx.Payout.PayoutID)
	require.Equal(t, "processing", tx.Payout.PayoutStatus)
	require.NotNil(t, tx.Payout.EstimatedArrival)
	require.NotNil(t, tx.CompletedAt)
	require.WithinDuration(t, tx.CompletedAt.Add(48*time.Hour), *tx.Payout.EstimatedArrival, time.Second)

	require.NotNil(t, tx.ProcessedAt)
	require.Nil(t, tx.FailedAt)
	require.Nil(t, tx.Error)

	client.AssertExpectations(t)
	payout.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_InitiateConversion_DeclinedPayoutResolvesFailed(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	ctx := context.Background()
	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(usdTable(), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
	payout.On("Submit", mock.Anything, mock.Anything).Return(domain.PayoutResult{Success: false, Error: "insufficient liquidity"}, nil).Once()

	tx, err := svc.InitiateConversion(ctx, "m1", completedPayment("pay1", "m1", "100"), activeSettings("m1"), domain.MethodAutomatic)

	// A declined payout is a normal terminal outcome, not an error.
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, tx.Status)
	require.NotNil(t, tx.FailedAt)
	require.Nil(t, tx.CompletedAt)
	require.NotNil(t, tx.Error)
	require.Equal(t, domain.CodeConversionFailed, tx.Error.Code)
	require.Equal(t, "insufficient liquidity", tx.Error.ProviderError)
	require.Nil(t, tx.Payout)

	payout.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_InitiateConversion_ProviderFaultPropagates(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	ctx := context.Background()
	wantErr := errors.New("payout rail timeout")
	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(usdTable(), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
	payout.On("Submit", mock.Anything, mock.Anything).Return(domain.PayoutResult{}, wantErr).Once()

	tx, err := svc.InitiateConversion(ctx, "m1", completedPayment("pay1", "m1", "100"), activeSettings("m1"), domain.MethodAutomatic)

	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
	require.Equal(t, domain.StatusFailed, tx.Status)
	require.NotNil(t, tx.Error)
	require.Equal(t, domain.CodeExecutionError, tx.Error.Code)
	require.NotNil(t, tx.FailedAt)

	payout.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestService_InitiateConversion_ManualRequiresOwnership(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	_, err := svc.InitiateConversion(context.Background(), "other-merchant", completedPayment("pay1", "m1", "100"), activeSettings("m1"), domain.MethodManual)

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	payout.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestService_InitiateConversion_InvalidMethod(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	_, err := svc.InitiateConversion(context.Background(), "m1", completedPayment("pay1", "m1", "100"), activeSettings("m1"), domain.ConversionMethod("bulk"))

	require.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_InitiateConversion_RateFailureLeavesNothingPersisted(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("provider down")).Once()

	_, err := svc.InitiateConversion(context.Background(), "m1", completedPayment("pay1", "m1", "100"), activeSettings("m1"), domain.MethodAutomatic)

	require.ErrorIs(t, err, domain.ErrRateUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	payout.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

// --- Estimate ---

func TestService_Estimate_EURQuote(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(usdTable(), nil).Once()

	est, err := svc.Estimate(context.Background(), decimal.RequireFromString("100"), domain.USDC, domain.EUR)

	require.NoError(t, err)
	require.InDelta(t, 85.00, est.FiatAmount, 1e-9)
	require.InDelta(t, 0.85, est.ExchangeRate, 1e-9)
	require.InDelta(t, 0.43, est.Fees.Conversion, 1e-9)
	require.InDelta(t, 2.50, est.Fees.Network, 1e-9)
	require.InDelta(t, 1.50, est.Fees.Banking, 1e-9)
	require.InDelta(t, 4.43, est.Fees.Total, 1e-9)
	require.InDelta(t, 80.57, est.NetAmount, 1e-9)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- HandlePaymentCompleted ---

func TestService_HandlePaymentCompleted_ConvertsEligiblePayment(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	client.On("GetSpotPrices", mock.Anything, mock.Anything, mock.Anything).Return(usdTable(), nil).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()
	payout.On("Submit", mock.Anything, mock.Anything).Return(domain.PayoutResult{Success: true, PayoutID: "po_1"}, nil).Once()

	tx, err := svc.HandlePaymentCompleted(context.Background(), completedPayment("pay1", "m1", "100"), activeSettings("m1"))

	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Equal(t, domain.MethodAutomatic, tx.Method)
	require.Equal(t, domain.StatusCompleted, tx.Status)
}

func TestService_HandlePaymentCompleted_SkipsBelowThreshold(t *testing.T) {
	client := new(MockPriceClient)
	payout := new(MockPayoutProvider)
	repo := new(MockConversionRepository)
	svc := newTestService(client, payout, repo)

	tx, err := svc.HandlePaymentCompleted(context.Background(), completedPayment("pay1", "m1", "5"), activeSettings("m1"))

	require.NoError(t, err)
	require.Nil(t, tx)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
