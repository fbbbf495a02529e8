package dedup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rescue-router/internal/resilience"
	"github.com/sells-group/rescue-router/pkg/anthropic"
	"github.com/sells-group/rescue-router/pkg/anthropic/mocks"
)

func reply(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Model:   "claude-haiku-4-5-20251001",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 120, OutputTokens: 8},
	}
}

func TestLLMOracle_Duplicates(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			len(req.System) == 1 &&
			strings.Contains(req.System[0].Text, "near-duplicate partner") &&
			len(req.Messages) == 1 &&
			strings.Contains(req.Messages[0].Content, "市人民医院住院部 | 0.40") &&
			strings.Contains(req.Messages[0].Content, "无距离医院 | unknown")
	})).Return(reply("```json\n[\"市人民医院住院部\"]\n```"), nil)

	d := 0.4
	o := NewLLMOracle(client, nil, "claude-haiku-4-5-20251001", 0)
	names, err := o.Duplicates(context.Background(), []Candidate{
		{Name: "市人民医院住院部", DistanceKM: &d},
		{Name: "无距离医院"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"市人民医院住院部"}, names)
}

func TestLLMOracle_SharesThrottle(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		}).
		Return(reply(`[]`), nil).
		Times(8)

	th := resilience.NewThrottle(resilience.ThrottleConfig{RatePerSecond: 1000, Burst: 8, MaxConcurrent: 2})
	o := NewLLMOracle(client, th, "m", 64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Duplicates(context.Background(), []Candidate{{Name: "a"}})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(0), inFlight.Load())
}

func TestLLMOracle_CanceledWhileWaiting(t *testing.T) {
	client := mocks.NewMockClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	th := resilience.NewThrottle(resilience.ThrottleConfig{MaxConcurrent: 1})
	_, err := NewLLMOracle(client, th, "m", 64).Duplicates(ctx, []Candidate{{Name: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dedup: oracle request")
	client.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestLLMOracle_EmptyCandidates(t *testing.T) {
	client := mocks.NewMockClient(t)
	names, err := NewLLMOracle(client, nil, "m", 64).Duplicates(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestLLMOracle_RequestError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("overloaded"))

	_, err := NewLLMOracle(client, nil, "m", 64).Duplicates(context.Background(), []Candidate{{Name: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dedup: oracle request")
}

func TestLLMOracle_EngineFallsBackOnBadReply(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(reply("I could not decide."), nil)

	e := NewEngine(DefaultPolicy(), NewLLMOracle(client, nil, "m", 64))
	assert.Equal(t, []string{"市人民医院住院部"}, e.Deletions(context.Background(), hospitalScenario()))
}

func TestParseNames(t *testing.T) {
	names, err := parseNames(`[]`)
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = parseNames(`Result: ["a", 3, "b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	_, err = parseNames(`no array here`)
	assert.Error(t, err)

	_, err = parseNames(`["a",`)
	assert.Error(t, err)

	_, err = parseNames(`[a, b]`)
	assert.Error(t, err)
}
