package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"healthpulse-backend/internal/channel/domain"
	customerdomain "healthpulse-backend/internal/customer/domain"
	"healthpulse-backend/pkg/slackclient"
)

type fakeSource struct {
	channels  []slackclient.ChannelInfo
	histories map[string][]slackclient.Message
	errs      map[string]error
	listErr   error
}

func (f *fakeSource) ListChannels(ctx context.Context) ([]slackclient.ChannelInfo, error) {
	return f.channels, f.listErr
}

func (f *fakeSource) FetchHistory(ctx context.Context, channelID string, oldest, latest time.Time, limit int) ([]slackclient.Message, error) {
	if err := f.errs[channelID]; err != nil {
		return nil, err
	}
	return f.histories[channelID], nil
}

type memChannelRepo struct {
	channels []*domain.Channel
	created  []*domain.Channel
}

func (m *memChannelRepo) Create(c *domain.Channel) error {
	m.channels = append(m.channels, c)
	m.created = append(m.created, c)
	return nil
}
func (m *memChannelRepo) FindByID(id string) (*domain.Channel, error) {
	for _, c := range m.channels {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
func (m *memChannelRepo) FindBySlackID(slackID string) (*domain.Channel, error) {
	for _, c := range m.channels {
		if c.SlackChannelID == slackID {
			return c, nil
		}
	}
	return nil, nil
}
func (m *memChannelRepo) FindByCustomerID(customerID string) ([]*domain.Channel, error) {
	var out []*domain.Channel
	for _, c := range m.channels {
		if c.CustomerID != nil && *c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (m *memChannelRepo) FindMonitored() ([]*domain.Channel, error) { return nil, nil }
func (m *memChannelRepo) FindAll(limit, offset int) ([]*domain.Channel, int64, error) {
	return m.channels, int64(len(m.channels)), nil
}
func (m *memChannelRepo) Update(c *domain.Channel) error { return nil }
func (m *memChannelRepo) Delete(id string) error         { return nil }
func (m *memChannelRepo) CountMonitored() (int64, error) { return 0, nil }

// memMessageRepo honors the (channel_id, slack_message_ts) unique key the
// way the duplicate-safe insert does.
type memMessageRepo struct {
	stored map[string]*domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{stored: map[string]*domain.Message{}}
}

func (m *memMessageRepo) InsertBatch(messages []*domain.Message) (int, error) {
	inserted := 0
	for _, msg := range messages {
		key := msg.ChannelID + "/" + msg.SlackMessageTS
		if _, exists := m.stored[key]; exists {
			continue
		}
		m.stored[key] = msg
		inserted++
	}
	return inserted, nil
}
func (m *memMessageRepo) FindByCustomerSince(customerID string, since, until time.Time, limit int) ([]*domain.Message, error) {
	return nil, nil
}
func (m *memMessageRepo) FindByChannelSince(channelID string, since, until time.Time, limit int) ([]*domain.Message, error) {
	return nil, nil
}
func (m *memMessageRepo) CountByChannel(channelID string) (int64, error) {
	var n int64
	for _, msg := range m.stored {
		if msg.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func slackMsgs(n int, user string) []slackclient.Message {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]slackclient.Message, n)
	for i := 0; i < n; i++ {
		out[i] = slackclient.Message{
			TS:        fmt.Sprintf("%d.%06d", base.Unix(), i),
			UserID:    user,
			Text:      fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func testWindow() (time.Time, time.Time) {
	until := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	return until.AddDate(0, 0, -30), until
}

func TestFetchChannelHistoryIdempotent(t *testing.T) {
	source := &fakeSource{histories: map[string][]slackclient.Message{"C100": slackMsgs(8, "U200")}}
	messages := newMemMessageRepo()
	svc := NewIngestService(&memChannelRepo{}, messages, source)

	channel := &domain.Channel{ID: "chan-1", SlackChannelID: "C100", Name: "acme-support"}
	since, until := testWindow()

	first, err := svc.FetchChannelHistory(context.Background(), channel, "U200", since, until)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if first != 8 {
		t.Errorf("expected 8 new messages on first fetch, got %d", first)
	}

	second, err := svc.FetchChannelHistory(context.Background(), channel, "U200", since, until)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if second != 0 {
		t.Errorf("re-fetch of the same window must store nothing, got %d", second)
	}
	if len(messages.stored) != 8 {
		t.Errorf("expected 8 stored messages total, got %d", len(messages.stored))
	}
}

func TestFetchChannelHistoryClassifiesSenders(t *testing.T) {
	history := []slackclient.Message{
		{TS: "1.000001", UserID: "U200", Text: "hi", Timestamp: time.Now()},
		{TS: "1.000002", UserID: "U999", Text: "hello", Timestamp: time.Now()},
		{TS: "1.000003", UserID: "B1", Text: "beep", Timestamp: time.Now(), FromBot: true},
		{TS: "", UserID: "U200", Text: "no ts, dropped", Timestamp: time.Now()},
	}
	source := &fakeSource{histories: map[string][]slackclient.Message{"C100": history}}
	messages := newMemMessageRepo()
	svc := NewIngestService(&memChannelRepo{}, messages, source)

	channel := &domain.Channel{ID: "chan-1", SlackChannelID: "C100"}
	since, until := testWindow()
	stored, err := svc.FetchChannelHistory(context.Background(), channel, "U200", since, until)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if stored != 3 {
		t.Fatalf("expected 3 stored (timestamp-less row dropped), got %d", stored)
	}

	types := map[string]domain.UserType{}
	for _, m := range messages.stored {
		types[m.SlackMessageTS] = m.UserType
	}
	if types["1.000001"] != domain.UserTypeCustomer {
		t.Errorf("linked Slack user must classify as customer, got %s", types["1.000001"])
	}
	if types["1.000002"] != domain.UserTypeInternal {
		t.Errorf("unknown user must classify as internal, got %s", types["1.000002"])
	}
	if types["1.000003"] != domain.UserTypeBot {
		t.Errorf("bot post must classify as bot, got %s", types["1.000003"])
	}
}

func TestClassifySenderWithoutMapping(t *testing.T) {
	msg := slackclient.Message{UserID: "U999"}
	if got := classifySender(msg, ""); got != domain.UserTypeCustomer {
		t.Errorf("without a mapping senders default to customer, got %s", got)
	}
}

func TestIngestForCustomerSkipsUnmonitored(t *testing.T) {
	link := "cust-1"
	channels := &memChannelRepo{channels: []*domain.Channel{
		{ID: "chan-1", SlackChannelID: "C100", Name: "acme-support", CustomerID: &link, IsMonitored: true},
		{ID: "chan-2", SlackChannelID: "C200", Name: "acme-archive", CustomerID: &link, IsMonitored: false},
	}}
	source := &fakeSource{histories: map[string][]slackclient.Message{
		"C100": slackMsgs(5, "U200"),
		"C200": slackMsgs(5, "U200"),
	}}
	svc := NewIngestService(channels, newMemMessageRepo(), source)

	since, until := testWindow()
	report, err := svc.IngestForCustomer(context.Background(), &customerdomain.Customer{ID: "cust-1", SlackUserID: "U200"}, since, until)
	if err != nil {
		t.Fatalf("IngestForCustomer failed: %v", err)
	}
	if report.ChannelsFetched != 1 {
		t.Errorf("expected 1 channel fetched, got %d", report.ChannelsFetched)
	}
	if report.ChannelsSkipped != 1 {
		t.Errorf("expected 1 channel skipped, got %d", report.ChannelsSkipped)
	}
	if report.NewMessages != 5 {
		t.Errorf("expected 5 new messages, got %d", report.NewMessages)
	}
}

func TestIngestForCustomerIsolatesChannelFailures(t *testing.T) {
	link := "cust-1"
	channels := &memChannelRepo{channels: []*domain.Channel{
		{ID: "chan-1", SlackChannelID: "C100", Name: "acme-support", CustomerID: &link, IsMonitored: true},
		{ID: "chan-2", SlackChannelID: "C200", Name: "acme-private", CustomerID: &link, IsMonitored: true},
	}}
	source := &fakeSource{
		histories: map[string][]slackclient.Message{"C100": slackMsgs(5, "U200")},
		errs:      map[string]error{"C200": fmt.Errorf("not_in_channel: %w", slackclient.ErrAuth)},
	}
	messages := newMemMessageRepo()
	svc := NewIngestService(channels, messages, source)

	since, until := testWindow()
	report, err := svc.IngestForCustomer(context.Background(), &customerdomain.Customer{ID: "cust-1", SlackUserID: "U200"}, since, until)
	if err != nil {
		t.Fatalf("a single channel failure must not fail the pass: %v", err)
	}
	if report.ChannelsFetched != 1 || report.NewMessages != 5 {
		t.Errorf("expected the healthy channel ingested, got %+v", report)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", len(report.Failures))
	}
	if !report.Failures[0].AuthError {
		t.Error("expected the failure marked as an auth error")
	}
	if report.Failures[0].SlackChannelID != "C200" {
		t.Errorf("expected failure for C200, got %s", report.Failures[0].SlackChannelID)
	}
	// The healthy channel's batch committed despite the sibling failure
	if len(messages.stored) != 5 {
		t.Errorf("expected 5 stored messages, got %d", len(messages.stored))
	}
}

func TestSyncChannelsCreatesUnknownOnly(t *testing.T) {
	channels := &memChannelRepo{channels: []*domain.Channel{
		{ID: "chan-1", SlackChannelID: "C100", Name: "known"},
	}}
	source := &fakeSource{channels: []slackclient.ChannelInfo{
		{ID: "C100", Name: "known"},
		{ID: "C300", Name: "brand-new"},
		{ID: "C400", Name: "vip-room", IsPrivate: true},
	}}
	svc := NewIngestService(channels, newMemMessageRepo(), source)

	created, err := svc.SyncChannels(context.Background())
	if err != nil {
		t.Fatalf("SyncChannels failed: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 created, got %d", created)
	}

	for _, c := range channels.created {
		if c.IsMonitored {
			t.Errorf("synced channel %s must start unmonitored", c.Name)
		}
	}

	vip, _ := channels.FindBySlackID("C400")
	if vip == nil || vip.ChannelType != domain.ChannelTypeDedicated {
		t.Errorf("private channels sync as dedicated, got %+v", vip)
	}
	fresh, _ := channels.FindBySlackID("C300")
	if fresh == nil || fresh.ChannelType != domain.ChannelTypeCustomerSupport {
		t.Errorf("public channels sync as customer support, got %+v", fresh)
	}
}
