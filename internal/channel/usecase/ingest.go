package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"healthpulse-backend/internal/channel/domain"
	"healthpulse-backend/internal/channel/repository"
	customerdomain "healthpulse-backend/internal/customer/domain"
	"healthpulse-backend/pkg/slackclient"
)

// MessageSource is the external messaging capability the ingester fetches
// history from.
type MessageSource interface {
	ListChannels(ctx context.Context) ([]slackclient.ChannelInfo, error)
	FetchHistory(ctx context.Context, channelID string, oldest, latest time.Time, limit int) ([]slackclient.Message, error)
}

// ChannelFailure records a non-fatal per-channel ingestion failure
type ChannelFailure struct {
	ChannelID      string `json:"channel_id"`
	ChannelName    string `json:"channel_name"`
	SlackChannelID string `json:"slack_channel_id"`
	Reason         string `json:"reason"`
	AuthError      bool   `json:"auth_error"`
}

// IngestReport summarizes one ingestion pass for a customer
type IngestReport struct {
	ChannelsFetched int              `json:"channels_fetched"`
	ChannelsSkipped int              `json:"channels_skipped"`
	NewMessages     int              `json:"new_messages"`
	Failures        []ChannelFailure `json:"failures,omitempty"`
}

// IngestService fetches Slack channel history and persists it with
// duplicate-safe, per-channel commits.
type IngestService struct {
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	source      MessageSource
	fetchLimit  int
}

// NewIngestService creates a new IngestService
func NewIngestService(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	source MessageSource,
) *IngestService {
	return &IngestService{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		source:      source,
		fetchLimit:  1000,
	}
}

// FetchChannelHistory fetches one channel's history over [since, until],
// deduplicates against stored messages and persists the remainder. The
// write commits before this returns, so a message-count read issued for the
// next channel sees this channel's rows. Returns the newly stored count.
//
// customerSlackID resolves sender classification: messages from the linked
// customer's Slack user are tagged customer, bot posts bot, the rest
// internal.
func (s *IngestService) FetchChannelHistory(ctx context.Context, channel *domain.Channel, customerSlackID string, since, until time.Time) (int, error) {
	raw, err := s.source.FetchHistory(ctx, channel.SlackChannelID, since, until, s.fetchLimit)
	if err != nil {
		return 0, fmt.Errorf("fetch history for channel %s: %w", channel.Name, err)
	}

	messages := make([]*domain.Message, 0, len(raw))
	for _, m := range raw {
		if m.TS == "" {
			continue
		}
		messages = append(messages, &domain.Message{
			ChannelID:        channel.ID,
			SlackMessageTS:   m.TS,
			SlackUserID:      m.UserID,
			UserType:         classifySender(m, customerSlackID),
			Content:          m.Text,
			MessageTimestamp: m.Timestamp,
		})
	}

	stored, err := s.messageRepo.InsertBatch(messages)
	if err != nil {
		return 0, fmt.Errorf("store messages for channel %s: %w", channel.Name, err)
	}

	log.Printf("[Ingest] channel %s: fetched %d, stored %d new", channel.Name, len(raw), stored)
	return stored, nil
}

// IngestForCustomer ingests history for every monitored channel linked to
// the customer. Channels are fetched concurrently, but each channel commits
// its own batch, so partial progress is visible immediately. A failing
// channel is recorded as a warning and never aborts its siblings.
func (s *IngestService) IngestForCustomer(ctx context.Context, customer *customerdomain.Customer, since, until time.Time) (*IngestReport, error) {
	channels, err := s.channelRepo.FindByCustomerID(customer.ID)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, channel := range channels {
		if !channel.IsMonitored {
			report.ChannelsSkipped++
			continue
		}

		ch := channel
		g.Go(func() error {
			stored, fetchErr := s.FetchChannelHistory(gctx, ch, customer.SlackUserID, since, until)

			mu.Lock()
			defer mu.Unlock()
			if fetchErr != nil {
				log.Printf("[Ingest] channel %s (%s) failed: %v", ch.Name, ch.SlackChannelID, fetchErr)
				report.Failures = append(report.Failures, ChannelFailure{
					ChannelID:      ch.ID,
					ChannelName:    ch.Name,
					SlackChannelID: ch.SlackChannelID,
					Reason:         fetchErr.Error(),
					AuthError:      errors.Is(fetchErr, slackclient.ErrAuth),
				})
				// non-fatal for the run
				return nil
			}
			report.ChannelsFetched++
			report.NewMessages += stored
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// SyncChannels imports the Slack channel list, creating records for
// channels not yet known. Returns the number of channels created.
func (s *IngestService) SyncChannels(ctx context.Context) (int, error) {
	infos, err := s.source.ListChannels(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, info := range infos {
		existing, err := s.channelRepo.FindBySlackID(info.ID)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		channelType := domain.ChannelTypeCustomerSupport
		if info.IsPrivate {
			channelType = domain.ChannelTypeDedicated
		}
		err = s.channelRepo.Create(&domain.Channel{
			SlackChannelID: info.ID,
			Name:           info.Name,
			ChannelType:    channelType,
			IsMonitored:    false, // monitoring is opted into explicitly
		})
		if err != nil {
			return created, err
		}
		created++
	}

	log.Printf("[Ingest] channel sync: %d known, %d created", len(infos)-created, created)
	return created, nil
}

func classifySender(m slackclient.Message, customerSlackID string) domain.UserType {
	switch {
	case m.FromBot:
		return domain.UserTypeBot
	case customerSlackID != "" && m.UserID == customerSlackID:
		return domain.UserTypeCustomer
	case customerSlackID == "":
		// without a mapping, assume external senders are the customer
		return domain.UserTypeCustomer
	default:
		return domain.UserTypeInternal
	}
}
