package weather

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(id string, loc Location, op Operator, threshold float64, active bool) AlertRule {
	return AlertRule{
		ID:        id,
		Email:     id + "@example.com",
		Location:  loc,
		Operator:  op,
		Threshold: threshold,
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}
}

func TestEvaluateAboveIsStrict(t *testing.T) {
	tests := []struct {
		temp  float64
		fires int
	}{
		{temp: 31, fires: 1},
		{temp: 30, fires: 0},
		{temp: 29, fires: 0},
	}

	for _, tt := range tests {
		alerts := &fakeAlertStore{rules: []AlertRule{rule("a", delhi, OperatorAbove, 30, true)}}
		notifier := &recordingNotifier{}
		e := NewEvaluator(alerts, notifier, time.Second, nopLog)

		fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: tt.temp})
		require.NoError(t, err)
		assert.Equal(t, tt.fires, fired, "temp=%v", tt.temp)
		assert.Len(t, notifier.messages(), tt.fires, "temp=%v", tt.temp)
	}
}

func TestEvaluateBelowIsStrict(t *testing.T) {
	tests := []struct {
		temp  float64
		fires int
	}{
		{temp: 9, fires: 1},
		{temp: 10, fires: 0},
		{temp: 11, fires: 0},
	}

	for _, tt := range tests {
		alerts := &fakeAlertStore{rules: []AlertRule{rule("b", delhi, OperatorBelow, 10, true)}}
		notifier := &recordingNotifier{}
		e := NewEvaluator(alerts, notifier, time.Second, nopLog)

		fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: tt.temp})
		require.NoError(t, err)
		assert.Equal(t, tt.fires, fired, "temp=%v", tt.temp)
		assert.Len(t, notifier.messages(), tt.fires, "temp=%v", tt.temp)
	}
}

func TestEvaluateSkipsInactiveRules(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{
		rule("inactive", delhi, OperatorAbove, 0, false),
	}}
	notifier := &recordingNotifier{}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 45})
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Empty(t, notifier.messages())
}

func TestEvaluateMatchesLocationExactly(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{
		rule("delhi", delhi, OperatorAbove, 0, true),
		rule("mumbai", Location{Name: "Mumbai"}, OperatorAbove, 0, true),
	}}
	notifier := &recordingNotifier{}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	require.Len(t, notifier.messages(), 1)
	assert.Equal(t, "delhi@example.com", notifier.messages()[0].Recipient)
}

func TestEvaluateContinuesAfterNotifierFailure(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{
		rule("first", delhi, OperatorAbove, 30, true),
		rule("second", delhi, OperatorAbove, 25, true),
		rule("third", delhi, OperatorBelow, 40, true),
	}}
	notifier := &recordingNotifier{fail: map[string]bool{"first@example.com": true}}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 31})
	require.NoError(t, err)
	assert.Equal(t, 3, fired)
	assert.Len(t, notifier.messages(), 3)
}

func TestEvaluateRefiresEveryObservation(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{rule("a", delhi, OperatorAbove, 30, true)}}
	notifier := &recordingNotifier{}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	for i := 0; i < 3; i++ {
		_, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 35})
		require.NoError(t, err)
	}
	assert.Len(t, notifier.messages(), 3)
	assert.True(t, alerts.rules[0].Active)
}

func TestEvaluateMessage(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{rule("a", delhi, OperatorAbove, 30, true)}}
	notifier := &recordingNotifier{}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	_, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 31})
	require.NoError(t, err)

	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Weather Alert for Delhi", msgs[0].Subject)
	assert.Equal(t, "The temperature in Delhi is now 31.0°C, which is above your set threshold of 30.0°C.", msgs[0].Body)
}

func TestEvaluateStoreFailure(t *testing.T) {
	alerts := &fakeAlertStore{findErr: assert.AnError}
	notifier := &recordingNotifier{}
	e := NewEvaluator(alerts, notifier, time.Second, nopLog)

	_, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 31})
	assert.True(t, IsKind(err, KindStoreUnavailable))
	assert.Empty(t, notifier.messages())
}

type blockingNotifier struct{}

func (blockingNotifier) Send(ctx context.Context, _, _, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestEvaluateBoundsNotificationLatency(t *testing.T) {
	alerts := &fakeAlertStore{rules: []AlertRule{rule("a", delhi, OperatorAbove, 30, true)}}
	e := NewEvaluator(alerts, blockingNotifier{}, 20*time.Millisecond, nopLog)

	start := time.Now()
	fired, err := e.Evaluate(context.Background(), Observation{Location: delhi, Temperature: 31})
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOperatorMatches(t *testing.T) {
	assert.True(t, OperatorAbove.Matches(30.1, 30))
	assert.False(t, OperatorAbove.Matches(30, 30))
	assert.True(t, OperatorBelow.Matches(-0.5, 0))
	assert.False(t, OperatorBelow.Matches(0, 0))
	assert.False(t, Operator("equals").Matches(1, 1))
	assert.False(t, Operator("equals").Valid())
}
