package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	channelrepo "healthpulse-backend/internal/channel/repository"
	channelusecase "healthpulse-backend/internal/channel/usecase"
	customerdomain "healthpulse-backend/internal/customer/domain"
	customerrepo "healthpulse-backend/internal/customer/repository"
	"healthpulse-backend/internal/health/domain"
	healthrepo "healthpulse-backend/internal/health/repository"
)

// Validation errors that fail a run before any agent executes
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrNoChannels          = errors.New("no channels linked")
	ErrNoMonitoredChannels = errors.New("no monitored channels")
	ErrNoMessages          = errors.New("no messages stored for any monitored channel")
)

// RunState tracks the per-customer analysis state machine
type RunState string

const (
	StatePending          RunState = "PENDING"
	StateIngesting        RunState = "INGESTING"
	StateScoringSentiment RunState = "SCORING(sentiment)"
	StateScoringHealth    RunState = "SCORING(health)"
	StateScoringChurn     RunState = "SCORING(churn)"
	StateScoringActions   RunState = "SCORING(actions)"
	StatePersisted        RunState = "PERSISTED"
	StateFailed           RunState = "FAILED"
)

// RunResult is the trackable completion status of one customer's run
type RunResult struct {
	CustomerID       string                          `json:"customer_id"`
	State            RunState                        `json:"state"`
	FailureReason    string                          `json:"failure_reason,omitempty"`
	HealthScore      *domain.HealthScore             `json:"health_score,omitempty"`
	ActionItems      []*domain.ActionItem            `json:"action_items,omitempty"`
	Warnings         []channelusecase.ChannelFailure `json:"warnings,omitempty"`
	MessagesAnalyzed int                             `json:"messages_analyzed"`
}

// Ingester is the slice of the ingestion service the orchestrator drives
type Ingester interface {
	IngestForCustomer(ctx context.Context, customer *customerdomain.Customer, since, until time.Time) (*channelusecase.IngestReport, error)
}

// Orchestrator sequences ingestion and the four scoring agents for one
// customer, or batches the sequence across all active customers. It is the
// single layer deciding fatal-vs-continue: agents degrade internally,
// validation failures stop a run before scoring, and the final result set
// persists atomically per customer.
type Orchestrator struct {
	customerRepo customerrepo.CustomerRepository
	channelRepo  channelrepo.ChannelRepository
	messageRepo  channelrepo.MessageRepository
	healthRepo   healthrepo.HealthScoreRepository
	ingester     Ingester

	sentimentAgent *SentimentAgent
	scoreAgent     *HealthScoreAgent
	churnAgent     *ChurnAgent
	actionAgent    *ActionItemAgent

	windowDays   int
	historyLimit int
	messageLimit int

	// one run at a time per customer: the scheduled batch and an on-demand
	// recalculate must not double-write
	runLocks sync.Map
}

// NewOrchestrator wires the orchestrator with its collaborators
func NewOrchestrator(
	customerRepo customerrepo.CustomerRepository,
	channelRepo channelrepo.ChannelRepository,
	messageRepo channelrepo.MessageRepository,
	healthRepo healthrepo.HealthScoreRepository,
	ingester Ingester,
	sentimentAgent *SentimentAgent,
	scoreAgent *HealthScoreAgent,
	churnAgent *ChurnAgent,
	actionAgent *ActionItemAgent,
	windowDays, historyLimit int,
) *Orchestrator {
	if windowDays <= 0 {
		windowDays = 30
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Orchestrator{
		customerRepo:   customerRepo,
		channelRepo:    channelRepo,
		messageRepo:    messageRepo,
		healthRepo:     healthRepo,
		ingester:       ingester,
		sentimentAgent: sentimentAgent,
		scoreAgent:     scoreAgent,
		churnAgent:     churnAgent,
		actionAgent:    actionAgent,
		windowDays:     windowDays,
		historyLimit:   historyLimit,
		messageLimit:   1000,
	}
}

// AnalyzeCustomer runs the full pipeline for one customer: ingest linked
// channels, then sentiment, health, churn and action agents, then one
// atomic persist of the result set.
func (o *Orchestrator) AnalyzeCustomer(ctx context.Context, customerID string) (*RunResult, error) {
	unlock := o.lockCustomer(customerID)
	defer unlock()

	customer, err := o.customerRepo.FindByID(customerID)
	if err != nil {
		return o.fail(customerID, err), err
	}
	if customer == nil {
		return o.fail(customerID, ErrCustomerNotFound), ErrCustomerNotFound
	}

	return o.analyze(ctx, customer, nil)
}

// RunAll executes the batch: ingestion for every active customer's
// monitored channels first, then scoring customer by customer. A failing
// customer never blocks the rest of the batch.
func (o *Orchestrator) RunAll(ctx context.Context) ([]*RunResult, error) {
	customers, err := o.customerRepo.FindActive()
	if err != nil {
		return nil, err
	}

	until := time.Now()
	since := until.AddDate(0, 0, -o.windowDays)

	// Phase 1: ingest everything so scoring operates on uniform data
	reports := make(map[string]*channelusecase.IngestReport, len(customers))
	for _, customer := range customers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		report, ingestErr := o.ingester.IngestForCustomer(ctx, customer, since, until)
		if ingestErr != nil {
			log.Printf("[Orchestrator] batch ingestion for customer %s failed: %v", customer.ID, ingestErr)
			report = &channelusecase.IngestReport{}
		}
		reports[customer.ID] = report
	}

	// Phase 2: score sequentially with per-customer failure isolation
	results := make([]*RunResult, 0, len(customers))
	for _, customer := range customers {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		unlock := o.lockCustomer(customer.ID)
		result, runErr := o.analyze(ctx, customer, reports[customer.ID])
		unlock()

		if runErr != nil {
			log.Printf("[Orchestrator] customer %s run failed: %v", customer.ID, runErr)
		}
		results = append(results, result)
	}

	return results, nil
}

// analyze drives the state machine for one customer. When report is
// non-nil, ingestion already happened (batch mode) and its warnings carry
// over instead of fetching again.
func (o *Orchestrator) analyze(ctx context.Context, customer *customerdomain.Customer, report *channelusecase.IngestReport) (*RunResult, error) {
	result := &RunResult{CustomerID: customer.ID, State: StatePending}
	log.Printf("[Orchestrator] starting health analysis for customer %s", customer.ID)

	until := time.Now()
	since := until.AddDate(0, 0, -o.windowDays)

	// Fatal pre-checks, surfaced before any agent runs so a misleading
	// zero-confidence score is never produced silently
	channels, err := o.channelRepo.FindByCustomerID(customer.ID)
	if err != nil {
		return o.failResult(result, err), err
	}
	if len(channels) == 0 {
		return o.failResult(result, ErrNoChannels), ErrNoChannels
	}
	monitored := 0
	for _, ch := range channels {
		if ch.IsMonitored {
			monitored++
		}
	}
	if monitored == 0 {
		return o.failResult(result, ErrNoMonitoredChannels), ErrNoMonitoredChannels
	}

	result.State = StateIngesting
	if report == nil {
		report, err = o.ingester.IngestForCustomer(ctx, customer, since, until)
		if err != nil {
			return o.failResult(result, err), err
		}
	}
	result.Warnings = report.Failures

	// Per-channel fetch failures are non-fatal as long as any data exists,
	// fresh or from a prior run
	messages, err := o.messageRepo.FindByCustomerSince(customer.ID, since, until, o.messageLimit)
	if err != nil {
		return o.failResult(result, err), err
	}
	if len(messages) == 0 {
		return o.failResult(result, ErrNoMessages), ErrNoMessages
	}

	if err := ctx.Err(); err != nil {
		return o.failResult(result, err), err
	}
	result.State = StateScoringSentiment
	sentiment, err := o.sentimentAgent.Analyze(ctx, messages)
	if err != nil {
		return o.failResult(result, err), err
	}

	if err := ctx.Err(); err != nil {
		return o.failResult(result, err), err
	}
	result.State = StateScoringHealth
	engagement := ComputeEngagement(messages, o.windowDays)
	cadence := ComputeCadence(messages)
	score := o.scoreAgent.Score(sentiment, engagement, cadence)

	if err := ctx.Err(); err != nil {
		return o.failResult(result, err), err
	}
	result.State = StateScoringChurn
	history, err := o.healthRepo.FindHistory(customer.ID, o.historyLimit)
	if err != nil {
		return o.failResult(result, err), err
	}
	churn := o.churnAgent.Predict(score, history)

	if err := ctx.Err(); err != nil {
		return o.failResult(result, err), err
	}
	result.State = StateScoringActions
	items, actionsDegraded := o.actionAgent.Recommend(ctx, customer.Name, score.Score, churn.RiskFactors)
	if err := ctx.Err(); err != nil {
		return o.failResult(result, err), err
	}

	record := &domain.HealthScore{
		CustomerID:          customer.ID,
		Score:               score.Score,
		SentimentComponent:  score.SentimentComponent,
		EngagementComponent: score.EngagementComponent,
		CadenceComponent:    score.CadenceComponent,
		ChurnProbability:    churn.Probability,
		RiskFactors:         churn.RiskFactors,
		MessagesAnalyzed:    len(messages),
		PeriodStart:         since,
		PeriodEnd:           until,
		InsufficientData:    score.InsufficientData,
		Degraded:            sentiment.Degraded || actionsDegraded,
		Reasoning:           score.Reasoning,
	}

	if err := o.persist(record, items); err != nil {
		return o.failResult(result, fmt.Errorf("persist result set: %w", err)), err
	}

	result.State = StatePersisted
	result.HealthScore = record
	result.ActionItems = items
	result.MessagesAnalyzed = len(messages)
	log.Printf("[Orchestrator] customer %s scored %d/10 (churn %.2f, %d action items, %d messages)",
		customer.ID, record.Score, record.ChurnProbability, len(items), len(messages))
	return result, nil
}

// persist commits the result set atomically, retrying once. On failure no
// partial write is left behind: the repository transaction guarantees the
// score and its action items land together or not at all.
func (o *Orchestrator) persist(record *domain.HealthScore, items []*domain.ActionItem) error {
	err := o.healthRepo.SaveResult(record, items)
	if err == nil {
		return nil
	}

	log.Printf("[Orchestrator] persist failed, retrying once: %v", err)
	return o.healthRepo.SaveResult(record, items)
}

func (o *Orchestrator) lockCustomer(customerID string) func() {
	muIface, _ := o.runLocks.LoadOrStore(customerID, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (o *Orchestrator) fail(customerID string, err error) *RunResult {
	return o.failResult(&RunResult{CustomerID: customerID}, err)
}

func (o *Orchestrator) failResult(result *RunResult, err error) *RunResult {
	result.State = StateFailed
	result.FailureReason = err.Error()
	return result
}
