package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tlanclos/isthemountainout/internal/imagery"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/decision"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

type stubProvider struct {
	img imagery.Image
	err error
}

func (s stubProvider) Get(context.Context) (imagery.Image, error) { return s.img, s.err }

type stubClassifier struct {
	label types.Label
	conf  float64
	err   error
}

func (s stubClassifier) Classify(context.Context, imagery.Image) (types.Label, float64, error) {
	return s.label, s.conf, s.err
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []types.Observation
	imgs []*imagery.Image
	err  error
}

func (r *recordingObserver) Observe(_ context.Context, obs types.Observation, img *imagery.Image) (decision.Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, obs)
	r.imgs = append(r.imgs, img)
	return decision.Decision{RawLabel: obs.Label, CorrectedLabel: obs.Label, Outcome: decision.OutcomeNotNotable}, r.err
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var captured = time.Date(2021, 7, 2, 14, 40, 0, 0, time.UTC)

func TestCycle_UsesCaptureTime(t *testing.T) {
	obs := &recordingObserver{}
	p, err := NewPoller(
		stubProvider{img: imagery.Image{Data: []byte{1}, CapturedAt: captured}},
		stubClassifier{label: types.Mystical, conf: 81.5},
		obs, time.Minute, quiet())
	require.NoError(t, err)

	d, err := p.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.Mystical, d.CorrectedLabel)
	require.Len(t, obs.seen, 1)
	assert.True(t, obs.seen[0].Timestamp.Equal(captured))
	assert.Equal(t, 81.5, obs.seen[0].Confidence)
	require.NotNil(t, obs.imgs[0])
	assert.Equal(t, []byte{1}, obs.imgs[0].Data)
}

func TestCycle_Errors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		provider   stubProvider
		classifier stubClassifier
		observer   *recordingObserver
		wantErr    string
		wantCalls  int
	}{
		{name: "acquire", provider: stubProvider{err: boom}, observer: &recordingObserver{}, wantErr: "acquire image"},
		{name: "classify", classifier: stubClassifier{err: boom}, observer: &recordingObserver{}, wantErr: "classify image"},
		{name: "observe", classifier: stubClassifier{label: types.Hidden}, observer: &recordingObserver{err: boom}, wantErr: "observe", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoller(tt.provider, tt.classifier, tt.observer, time.Minute, quiet())
			require.NoError(t, err)
			_, err = p.Cycle(context.Background())
			assert.ErrorIs(t, err, boom)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, tt.observer.count())
		})
	}
}

func TestRun_KeepsPollingAfterFailure(t *testing.T) {
	obs := &recordingObserver{err: errors.New("store down")}
	p, err := NewPoller(
		stubProvider{img: imagery.Image{CapturedAt: captured}},
		stubClassifier{label: types.Hidden},
		obs, 5*time.Millisecond, quiet())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return obs.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewPoller_RejectsNonPositiveInterval(t *testing.T) {
	_, err := NewPoller(stubProvider{}, stubClassifier{}, &recordingObserver{}, 0, quiet())
	assert.Error(t, err)
}
