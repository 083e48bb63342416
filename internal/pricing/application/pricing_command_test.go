package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/config"
)

type memoryRepository struct {
	mu      sync.Mutex
	results []*domain.PricingResult
}

func (r *memoryRepository) Save(ctx context.Context, result *domain.PricingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = uint(len(r.results) + 1)
	r.results = append(r.results, result)
	return nil
}

func (r *memoryRepository) GetLatest(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].Symbol == symbol {
			return r.results[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memoryRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PricingResult
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		if r.results[i].Symbol == symbol {
			out = append(out, r.results[i])
		}
	}
	return out, nil
}

type memoryPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *memoryPublisher) Publish(ctx context.Context, eventType string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return nil
}

func (p *memoryPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == eventType {
			n++
		}
	}
	return n
}

func testDefaults() config.PricingConfig {
	return config.PricingConfig{
		NumPaths:         2000,
		NumSteps:         20,
		PolynomialDegree: 2,
		ForestTrees:      20,
		ForestMaxDepth:   4,
		ForestMinLeaf:    5,
		Seed:             42,
	}
}

func newTestService(repo *memoryRepository, pub *memoryPublisher) *PricingCommandService {
	return NewPricingCommandService(repo, pub, testDefaults(), nil)
}

func blackScholesCommand() PriceOptionCommand {
	return PriceOptionCommand{
		Symbol:          "AAPL-240621-C-100",
		OptionType:      "CALL",
		Style:           "EUROPEAN",
		StrikePrice:     100,
		UnderlyingPrice: 100,
		TimeToExpiry:    1,
		Volatility:      0.2,
		CurveTimes:      []float64{0, 1},
		CurveRates:      []float64{0.05, 0.05},
		PricingModel:    ModelBlackScholes,
	}
}

func hestonCommand() PriceOptionCommand {
	return PriceOptionCommand{
		Symbol:           "SPX-241220-P-100",
		OptionType:       "PUT",
		Style:            "AMERICAN",
		StrikePrice:      100,
		UnderlyingPrice:  100,
		TimeToExpiry:     1,
		CurveTimes:       []float64{0, 1},
		CurveRates:       []float64{0.05, 0.05},
		InitialVariance:  0.04,
		Kappa:            2,
		Theta:            0.04,
		Sigma:            0.1,
		Rho:              -0.7,
		RegressionMethod: "POLYNOMIAL",
		PricingModel:     ModelHeston,
	}
}

func TestPriceOptionBlackScholes(t *testing.T) {
	repo := &memoryRepository{}
	pub := &memoryPublisher{}
	svc := newTestService(repo, pub)

	result, err := svc.PriceOption(context.Background(), blackScholesCommand())
	if err != nil {
		t.Fatal(err)
	}

	price := result.OptionPrice.InexactFloat64()
	if price < 10.4 || price > 10.5 {
		t.Errorf("price = %v, want about 10.45", price)
	}
	if result.Delta.IsZero() {
		t.Error("greeks should be populated for black-scholes")
	}
	if len(repo.results) != 1 {
		t.Fatalf("saved %d results, want 1", len(repo.results))
	}
	if pub.count(domain.OptionPricedEventType) != 1 {
		t.Errorf("OptionPriced events = %d, want 1", pub.count(domain.OptionPricedEventType))
	}
	if pub.count(domain.GreeksCalculatedEventType) != 1 {
		t.Errorf("GreeksCalculated events = %d, want 1", pub.count(domain.GreeksCalculatedEventType))
	}
}

func TestPriceOptionHeston(t *testing.T) {
	repo := &memoryRepository{}
	pub := &memoryPublisher{}
	svc := newTestService(repo, pub)

	result, err := svc.PriceOption(context.Background(), hestonCommand())
	if err != nil {
		t.Fatal(err)
	}

	price := result.OptionPrice.InexactFloat64()
	if price < 4 || price > 10 {
		t.Errorf("price = %v, want in [4, 10]", price)
	}
	if result.StdError.IsZero() {
		t.Error("monte carlo result should carry a standard error")
	}
}

func TestPriceOptionUnknownModel(t *testing.T) {
	repo := &memoryRepository{}
	pub := &memoryPublisher{}
	svc := newTestService(repo, pub)

	cmd := blackScholesCommand()
	cmd.PricingModel = "Trinomial"
	if _, err := svc.PriceOption(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	// 失败时发布错误事件，不落库
	if pub.count(domain.PricingErrorEventType) != 1 {
		t.Errorf("PricingError events = %d, want 1", pub.count(domain.PricingErrorEventType))
	}
	if len(repo.results) != 0 {
		t.Errorf("saved %d results, want 0", len(repo.results))
	}
}

func TestPriceOptionMissingSymbol(t *testing.T) {
	svc := newTestService(&memoryRepository{}, &memoryPublisher{})
	cmd := blackScholesCommand()
	cmd.Symbol = ""
	if _, err := svc.PriceOption(context.Background(), cmd); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBatchPriceOptions(t *testing.T) {
	repo := &memoryRepository{}
	pub := &memoryPublisher{}
	svc := newTestService(repo, pub)

	bad := blackScholesCommand()
	bad.Volatility = -1

	result, err := svc.BatchPriceOptions(context.Background(), BatchPriceOptionsCommand{
		BatchID:   "batch-1",
		Contracts: []PriceOptionCommand{blackScholesCommand(), hestonCommand(), bad},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("success/failure = %d/%d, want 2/1", result.SuccessCount, result.FailureCount)
	}
	if pub.count(domain.BatchPricingCompletedEventType) != 1 {
		t.Errorf("BatchPricingCompleted events = %d, want 1", pub.count(domain.BatchPricingCompletedEventType))
	}
}

func TestQueryServiceGreeks(t *testing.T) {
	q := NewPricingQueryService(&memoryRepository{}, nil)

	greeks, err := q.GetGreeks(context.Background(), GreeksQuery{
		Symbol:          "AAPL",
		OptionType:      "CALL",
		StrikePrice:     100,
		UnderlyingPrice: 100,
		TimeToExpiry:    1,
		RiskFreeRate:    0.05,
		Volatility:      0.2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if greeks.Delta.IsZero() {
		t.Error("delta should be non-zero for at-the-money call")
	}

	// 已到期合约返回全零
	expired, err := q.GetGreeks(context.Background(), GreeksQuery{
		OptionType: "CALL", StrikePrice: 100, UnderlyingPrice: 100, TimeToExpiry: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !expired.Delta.IsZero() {
		t.Error("expired option greeks should be zero")
	}
}
