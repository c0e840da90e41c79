package session

import (
	"context"
	"testing"

	"github.com/couchcryptid/event-traffic-controller/internal/domain"
	"github.com/couchcryptid/event-traffic-controller/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChat(gw domain.ExtractionGateway) *ChatSession {
	return NewChatSession(gw, discardLogger(), observability.NewMetricsForTesting())
}

func TestChatSession_StartsWithWelcome(t *testing.T) {
	s := newTestChat(&fakeExtractor{})

	turns := s.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, domain.RoleAssistant, turns[0].Role)
	assert.Equal(t, WelcomeMessage, turns[0].Content)
	assert.True(t, turns[0].Synthetic)

	params := s.Parameters()
	assert.Nil(t, params.EventName)
	assert.NotNil(t, params.VIPNames)
	assert.Empty(t, params.VIPNames)
	assert.False(t, s.ReadyToSimulate())
	assert.False(t, s.Loading())
}

func TestChatSession_Submit_Success(t *testing.T) {
	gw := &fakeExtractor{replies: []domain.ChatReply{{
		Reply: "When is the concert?",
		ExtractedParams: domain.ExtractedParameters{
			EventName: domain.Ref("Concert"),
			VIPNames:  []string{"Mayor"},
		},
		ReadyToSimulate: false,
		MissingInfo:     []string{"date"},
	}}}
	s := newTestChat(gw)

	require.NoError(t, s.Submit(context.Background(), "Concert at the stadium"))

	turns := s.Transcript()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.RoleUser, turns[1].Role)
	assert.Equal(t, "Concert at the stadium", turns[1].Content)
	assert.Equal(t, domain.RoleAssistant, turns[2].Role)
	assert.Equal(t, "When is the concert?", turns[2].Content)

	assert.Equal(t, "Concert", domain.StringValue(s.Parameters().EventName))
	assert.Equal(t, []string{"Mayor"}, s.Parameters().VIPNames)
	assert.Equal(t, []string{"date"}, s.MissingInfo())
	assert.False(t, s.ReadyToSimulate())
	assert.False(t, s.Loading())

	// The welcome turn is never sent.
	require.Len(t, gw.histories, 1)
	assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleUser, Content: "Concert at the stadium"}}, gw.histories[0])
}

func TestChatSession_Submit_SendsFullHistory(t *testing.T) {
	gw := &fakeExtractor{replies: []domain.ChatReply{{Reply: "first"}, {Reply: "second"}}}
	s := newTestChat(gw)

	require.NoError(t, s.Submit(context.Background(), "a"))
	require.NoError(t, s.Submit(context.Background(), "b"))

	require.Len(t, gw.histories, 2)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "a"},
		{Role: domain.RoleAssistant, Content: "first"},
		{Role: domain.RoleUser, Content: "b"},
	}, gw.histories[1])
}

func TestChatSession_Submit_ReplacesSnapshotWholesale(t *testing.T) {
	gw := &fakeExtractor{replies: []domain.ChatReply{
		{Reply: "one", ExtractedParams: domain.ExtractedParameters{
			EventName: domain.Ref("Concert"),
			Venue:     domain.Ref("Stadio San Nicola"),
		}},
		{Reply: "two", ExtractedParams: domain.ExtractedParameters{
			EventName: domain.Ref("Concert"),
			Date:      domain.Ref("2024-09-01"),
		}},
	}}
	s := newTestChat(gw)

	require.NoError(t, s.Submit(context.Background(), "one"))
	require.NoError(t, s.Submit(context.Background(), "two"))

	p := s.Parameters()
	assert.Nil(t, p.Venue, "fields absent from the latest snapshot are not merged back")
	assert.Equal(t, "2024-09-01", domain.StringValue(p.Date))
	assert.NotNil(t, p.VIPNames)
	assert.True(t, s.ReadyToSimulate())
}

func TestChatSession_Submit_ReportedReadyIsAdvisory(t *testing.T) {
	gw := &fakeExtractor{replies: []domain.ChatReply{{
		Reply:           "ready!",
		ExtractedParams: domain.ExtractedParameters{EventName: domain.Ref("Concert")},
		ReadyToSimulate: true,
	}}}
	s := newTestChat(gw)

	require.NoError(t, s.Submit(context.Background(), "Concert"))
	assert.True(t, s.ReportedReady())
	assert.False(t, s.ReadyToSimulate())
}

func TestChatSession_Submit_FailureAppendsErrorTurn(t *testing.T) {
	gw := &fakeExtractor{
		replies: []domain.ChatReply{{
			Reply:           "noted",
			ExtractedParams: readyParams(),
			ReadyToSimulate: true,
		}},
		errs: []error{nil, errBackendDown},
	}
	s := newTestChat(gw)

	require.NoError(t, s.Submit(context.Background(), "Concert on 2024-09-01"))
	before := s.Parameters()

	require.NoError(t, s.Submit(context.Background(), "add the mayor"))

	turns := s.Transcript()
	require.Len(t, turns, 5)
	assert.Equal(t, domain.RoleAssistant, turns[4].Role)
	assert.Equal(t, "Communication error: backend down", turns[4].Content)
	assert.Equal(t, before, s.Parameters())
	assert.True(t, s.ReportedReady())
	assert.True(t, s.ReadyToSimulate())
	assert.False(t, s.Loading())
}

func TestChatSession_Submit_RejectsBlank(t *testing.T) {
	gw := &fakeExtractor{}
	s := newTestChat(gw)

	for _, text := range []string{"", "   ", "\n\t"} {
		assert.ErrorIs(t, s.Submit(context.Background(), text), ErrEmptyMessage)
	}
	assert.Len(t, s.Transcript(), 1)
	assert.Equal(t, 0, gw.calls())
}

func TestChatSession_Submit_RejectsWhileLoading(t *testing.T) {
	gw := &fakeExtractor{
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := newTestChat(gw)

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background(), "first") }()
	<-gw.entered

	assert.True(t, s.Loading())
	assert.ErrorIs(t, s.Submit(context.Background(), "second"), ErrChatBusy)

	close(gw.release)
	require.NoError(t, <-done)

	turns := s.Transcript()
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[1].Content)
	assert.Equal(t, 1, gw.calls())
	assert.False(t, s.Loading())
}

func TestChatSession_TranscriptIsAppendOnly(t *testing.T) {
	gw := &fakeExtractor{errs: []error{nil, errBackendDown, nil}}
	s := newTestChat(gw)

	prev := s.Transcript()
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.Submit(context.Background(), text))
		cur := s.Transcript()
		require.Len(t, cur, len(prev)+2)
		assert.Equal(t, prev, cur[:len(prev)])
		prev = cur
	}
	assert.Len(t, prev, 7)
}

func TestChatSession_Metrics(t *testing.T) {
	m := observability.NewMetricsForTesting()
	s := NewChatSession(&fakeExtractor{}, discardLogger(), m)

	require.NoError(t, s.Submit(context.Background(), "hi"))
	assert.InDelta(t, 1, testutil.ToFloat64(m.ChatTurns.WithLabelValues("user")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ChatTurns.WithLabelValues("assistant")), 0)
}
