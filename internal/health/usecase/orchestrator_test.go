package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	channeldomain "healthpulse-backend/internal/channel/domain"
	channelusecase "healthpulse-backend/internal/channel/usecase"
	customerdomain "healthpulse-backend/internal/customer/domain"
	"healthpulse-backend/internal/health/domain"
	"healthpulse-backend/internal/health/repository"
	"healthpulse-backend/pkg/slackclient"
)

type fakeCustomerRepo struct {
	customers map[string]*customerdomain.Customer
}

func (f *fakeCustomerRepo) Create(c *customerdomain.Customer) error { return nil }
func (f *fakeCustomerRepo) FindByID(id string) (*customerdomain.Customer, error) {
	return f.customers[id], nil
}
func (f *fakeCustomerRepo) FindAll(limit, offset int) ([]*customerdomain.Customer, int64, error) {
	all, err := f.FindActive()
	return all, int64(len(all)), err
}
func (f *fakeCustomerRepo) FindActive() ([]*customerdomain.Customer, error) {
	var out []*customerdomain.Customer
	for _, c := range f.customers {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCustomerRepo) Update(c *customerdomain.Customer) error { return nil }
func (f *fakeCustomerRepo) Delete(id string) error                  { return nil }

type fakeChannelRepo struct {
	channels []*channeldomain.Channel
}

func (f *fakeChannelRepo) Create(c *channeldomain.Channel) error { return nil }
func (f *fakeChannelRepo) FindByID(id string) (*channeldomain.Channel, error) {
	for _, c := range f.channels {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeChannelRepo) FindBySlackID(slackID string) (*channeldomain.Channel, error) {
	for _, c := range f.channels {
		if c.SlackChannelID == slackID {
			return c, nil
		}
	}
	return nil, nil
}
func (f *fakeChannelRepo) FindByCustomerID(customerID string) ([]*channeldomain.Channel, error) {
	var out []*channeldomain.Channel
	for _, c := range f.channels {
		if c.CustomerID != nil && *c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeChannelRepo) FindMonitored() ([]*channeldomain.Channel, error) {
	var out []*channeldomain.Channel
	for _, c := range f.channels {
		if c.IsMonitored {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeChannelRepo) FindAll(limit, offset int) ([]*channeldomain.Channel, int64, error) {
	return f.channels, int64(len(f.channels)), nil
}
func (f *fakeChannelRepo) Update(c *channeldomain.Channel) error { return nil }
func (f *fakeChannelRepo) Delete(id string) error                { return nil }
func (f *fakeChannelRepo) CountMonitored() (int64, error) {
	monitored, _ := f.FindMonitored()
	return int64(len(monitored)), nil
}

type fakeMessageRepo struct {
	byCustomer map[string][]*channeldomain.Message
}

func (f *fakeMessageRepo) InsertBatch(messages []*channeldomain.Message) (int, error) {
	return len(messages), nil
}
func (f *fakeMessageRepo) FindByCustomerSince(customerID string, since, until time.Time, limit int) ([]*channeldomain.Message, error) {
	return f.byCustomer[customerID], nil
}
func (f *fakeMessageRepo) FindByChannelSince(channelID string, since, until time.Time, limit int) ([]*channeldomain.Message, error) {
	return nil, nil
}
func (f *fakeMessageRepo) CountByChannel(channelID string) (int64, error) { return 0, nil }

type fakeHealthRepo struct {
	saved        []*domain.HealthScore
	savedItems   [][]*domain.ActionItem
	history      map[string][]*domain.HealthScore
	saveAttempts int
	failSaves    int
}

func (f *fakeHealthRepo) SaveResult(score *domain.HealthScore, items []*domain.ActionItem) error {
	f.saveAttempts++
	if f.saveAttempts <= f.failSaves {
		return fmt.Errorf("deadlock detected")
	}
	f.saved = append(f.saved, score)
	f.savedItems = append(f.savedItems, items)
	return nil
}
func (f *fakeHealthRepo) FindByID(id string) (*domain.HealthScore, error) { return nil, nil }
func (f *fakeHealthRepo) FindLatest(customerID string) (*domain.HealthScore, error) {
	h := f.history[customerID]
	if len(h) == 0 {
		return nil, nil
	}
	return h[0], nil
}
func (f *fakeHealthRepo) FindHistory(customerID string, limit int) ([]*domain.HealthScore, error) {
	return f.history[customerID], nil
}
func (f *fakeHealthRepo) FindAll(limit, offset int) ([]*domain.HealthScore, int64, error) {
	return f.saved, int64(len(f.saved)), nil
}
func (f *fakeHealthRepo) DashboardSummary() (*repository.DashboardSummary, error) {
	return &repository.DashboardSummary{}, nil
}

type fakeIngester struct {
	reports map[string]*channelusecase.IngestReport
	errs    map[string]error
	calls   []string
}

func (f *fakeIngester) IngestForCustomer(ctx context.Context, customer *customerdomain.Customer, since, until time.Time) (*channelusecase.IngestReport, error) {
	f.calls = append(f.calls, customer.ID)
	if err := f.errs[customer.ID]; err != nil {
		return nil, err
	}
	if r := f.reports[customer.ID]; r != nil {
		return r, nil
	}
	return &channelusecase.IngestReport{}, nil
}

type orchestratorFixture struct {
	customers *fakeCustomerRepo
	channels  *fakeChannelRepo
	messages  *fakeMessageRepo
	health    *fakeHealthRepo
	ingester  *fakeIngester
	inference *fakeInference
}

func newOrchestrator(t *testing.T, fx *orchestratorFixture) *Orchestrator {
	t.Helper()
	return NewOrchestrator(
		fx.customers, fx.channels, fx.messages, fx.health, fx.ingester,
		NewSentimentAgent(fx.inference, 50),
		NewHealthScoreAgent(),
		NewChurnAgent(0.5, 5),
		NewActionItemAgent(fx.inference),
		30, 10,
	)
}

func newFixture() *orchestratorFixture {
	link := "cust-1"
	return &orchestratorFixture{
		customers: &fakeCustomerRepo{customers: map[string]*customerdomain.Customer{
			"cust-1": {ID: "cust-1", Name: "Acme", SlackUserID: "U100", IsActive: true},
		}},
		channels: &fakeChannelRepo{channels: []*channeldomain.Channel{
			{ID: "chan-1", SlackChannelID: "C100", Name: "acme-support", CustomerID: &link, IsMonitored: true},
		}},
		messages:  &fakeMessageRepo{byCustomer: map[string][]*channeldomain.Message{}},
		health:    &fakeHealthRepo{history: map[string][]*domain.HealthScore{}},
		ingester:  &fakeIngester{reports: map[string]*channelusecase.IngestReport{}, errs: map[string]error{}},
		inference: &fakeInference{},
	}
}

func TestAnalyzeCustomerNotFound(t *testing.T) {
	fx := newFixture()
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "missing")
	if !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if result.State != StateFailed {
		t.Errorf("expected FAILED state, got %s", result.State)
	}
}

func TestAnalyzeCustomerNoChannels(t *testing.T) {
	fx := newFixture()
	fx.channels.channels = nil
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if !errors.Is(err, ErrNoChannels) {
		t.Fatalf("expected ErrNoChannels, got %v", err)
	}
	if result.State != StateFailed {
		t.Errorf("expected FAILED state, got %s", result.State)
	}
	if fx.health.saveAttempts != 0 {
		t.Error("a failed pre-check must not write a score")
	}
	if len(fx.ingester.calls) != 0 {
		t.Error("a failed pre-check must not trigger ingestion")
	}
}

func TestAnalyzeCustomerNoMonitoredChannels(t *testing.T) {
	fx := newFixture()
	fx.channels.channels[0].IsMonitored = false
	o := newOrchestrator(t, fx)

	_, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if !errors.Is(err, ErrNoMonitoredChannels) {
		t.Fatalf("expected ErrNoMonitoredChannels, got %v", err)
	}
}

func TestAnalyzeCustomerNoMessages(t *testing.T) {
	fx := newFixture()
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if !errors.Is(err, ErrNoMessages) {
		t.Fatalf("expected ErrNoMessages, got %v", err)
	}
	if result.State != StateFailed {
		t.Errorf("expected FAILED state, got %s", result.State)
	}
	if len(fx.ingester.calls) != 1 {
		t.Errorf("ingestion should run before the empty-window check, got %d calls", len(fx.ingester.calls))
	}
	if fx.health.saveAttempts != 0 {
		t.Error("an empty window must not write a score")
	}
}

func TestAnalyzeCustomerHappyPath(t *testing.T) {
	fx := newFixture()
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("AnalyzeCustomer returned error: %v", err)
	}
	if result.State != StatePersisted {
		t.Fatalf("expected PERSISTED state, got %s (%s)", result.State, result.FailureReason)
	}
	if result.MessagesAnalyzed != 12 {
		t.Errorf("expected 12 messages analyzed, got %d", result.MessagesAnalyzed)
	}
	if result.HealthScore == nil {
		t.Fatal("expected a health score on the result")
	}
	if result.HealthScore.Score < 1 || result.HealthScore.Score > 10 {
		t.Errorf("score %d out of range", result.HealthScore.Score)
	}
	if result.HealthScore.InsufficientData {
		t.Error("12 messages must not flag insufficient data")
	}
	if result.HealthScore.MessagesAnalyzed != 12 {
		t.Errorf("expected persisted message count 12, got %d", result.HealthScore.MessagesAnalyzed)
	}
	if len(fx.health.saved) != 1 {
		t.Fatalf("expected exactly one persisted score, got %d", len(fx.health.saved))
	}
}

func TestAnalyzeCustomerPersistRetriesOnce(t *testing.T) {
	fx := newFixture()
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)
	fx.health.failSaves = 1
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if result.State != StatePersisted {
		t.Errorf("expected PERSISTED state, got %s", result.State)
	}
	if fx.health.saveAttempts != 2 {
		t.Errorf("expected 2 save attempts, got %d", fx.health.saveAttempts)
	}
}

func TestAnalyzeCustomerPersistFailureLeavesNoScore(t *testing.T) {
	fx := newFixture()
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)
	fx.health.failSaves = 10
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if err == nil {
		t.Fatal("expected persist failure to surface")
	}
	if result.State != StateFailed {
		t.Errorf("expected FAILED state, got %s", result.State)
	}
	if fx.health.saveAttempts != 2 {
		t.Errorf("expected exactly one retry (2 attempts), got %d", fx.health.saveAttempts)
	}
	if len(fx.health.saved) != 0 {
		t.Error("a failed persist must leave no score visible")
	}
}

func TestAnalyzeCustomerCarriesIngestWarnings(t *testing.T) {
	fx := newFixture()
	fx.messages.byCustomer["cust-1"] = makeMessages(5, time.Hour)
	fx.ingester.reports["cust-1"] = &channelusecase.IngestReport{
		ChannelsFetched: 1,
		Failures: []channelusecase.ChannelFailure{
			{ChannelID: "chan-2", ChannelName: "acme-dev", Reason: "not_in_channel", AuthError: true},
		},
	}
	o := newOrchestrator(t, fx)

	result, err := o.AnalyzeCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("per-channel failures must not abort the run: %v", err)
	}
	if len(result.Warnings) != 1 || !result.Warnings[0].AuthError {
		t.Errorf("expected the auth failure carried as a warning, got %+v", result.Warnings)
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	fx := newFixture()
	// Second customer has no channels at all
	fx.customers.customers["cust-2"] = &customerdomain.Customer{ID: "cust-2", Name: "Globex", IsActive: true}
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)
	o := newOrchestrator(t, fx)

	results, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	states := map[string]RunState{}
	for _, r := range results {
		states[r.CustomerID] = r.State
	}
	if states["cust-1"] != StatePersisted {
		t.Errorf("expected cust-1 PERSISTED, got %s", states["cust-1"])
	}
	if states["cust-2"] != StateFailed {
		t.Errorf("expected cust-2 FAILED, got %s", states["cust-2"])
	}
	if len(fx.health.saved) != 1 {
		t.Errorf("expected exactly one persisted score, got %d", len(fx.health.saved))
	}
}

func TestRunAllChannelAuthFailureDoesNotBlockOtherCustomers(t *testing.T) {
	fx := newFixture()
	link2 := "cust-2"
	fx.customers.customers["cust-2"] = &customerdomain.Customer{ID: "cust-2", Name: "Globex", SlackUserID: "U200", IsActive: true}
	fx.channels.channels = append(fx.channels.channels, &channeldomain.Channel{
		ID: "chan-2", SlackChannelID: "C200", Name: "globex-support", CustomerID: &link2, IsMonitored: true,
	})
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)

	// Globex's only channel fails auth during fetch, so nothing lands in
	// its window; the other customer's run must be untouched
	fetchErr := fmt.Errorf("fetch history for C200: %w", slackclient.ErrAuth)
	fx.ingester.reports["cust-2"] = &channelusecase.IngestReport{
		ChannelsFetched: 1,
		Failures: []channelusecase.ChannelFailure{{
			ChannelID:      "chan-2",
			ChannelName:    "globex-support",
			SlackChannelID: "C200",
			Reason:         fetchErr.Error(),
			AuthError:      errors.Is(fetchErr, slackclient.ErrAuth),
		}},
	}
	o := newOrchestrator(t, fx)

	results, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	byCustomer := map[string]*RunResult{}
	for _, r := range results {
		byCustomer[r.CustomerID] = r
	}
	if byCustomer["cust-1"].State != StatePersisted {
		t.Errorf("expected cust-1 PERSISTED, got %s", byCustomer["cust-1"].State)
	}
	failed := byCustomer["cust-2"]
	if failed.State != StateFailed {
		t.Errorf("expected cust-2 FAILED, got %s", failed.State)
	}
	if len(failed.Warnings) != 1 || !failed.Warnings[0].AuthError {
		t.Errorf("expected the auth failure on cust-2's result, got %+v", failed.Warnings)
	}
	if len(fx.health.saved) != 1 || fx.health.saved[0].CustomerID != "cust-1" {
		t.Errorf("only cust-1 should persist a score, got %+v", fx.health.saved)
	}
}

func TestRunAllSkipsInactiveCustomers(t *testing.T) {
	fx := newFixture()
	fx.customers.customers["cust-3"] = &customerdomain.Customer{ID: "cust-3", Name: "Initech", IsActive: false}
	fx.messages.byCustomer["cust-1"] = makeMessages(12, 6*time.Hour)
	o := newOrchestrator(t, fx)

	results, err := o.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result for the single active customer, got %d", len(results))
	}
	for _, id := range fx.ingester.calls {
		if id == "cust-3" {
			t.Error("inactive customers must not be ingested")
		}
	}
}
