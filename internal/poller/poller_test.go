package poller

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/history"
	"github.com/CRaLFa/nikkei-bot/internal/notify"
	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScanner struct {
	site    string
	results []types.Disclosure
	seen    []types.Watermark
	entered chan struct{}
	release chan struct{}
}

func (f *fakeScanner) Site() string { return f.site }

func (f *fakeScanner) Scan(ctx context.Context, w types.Watermark, _ []*regexp.Regexp) types.Disclosure {
	f.seen = append(f.seen, w)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if len(f.results) == 0 {
		return types.Disclosure{}
	}
	d := f.results[0]
	f.results = f.results[1:]
	return d
}

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []types.Entry
}

func (f *fakeDeliverer) Deliver(_ context.Context, d types.Disclosure) notify.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, d.Entries...)
	return notify.Stats{Entries: len(d.Entries), Sent: len(d.Entries)}
}

type failingStore struct{ history.Store }

func (failingStore) Get(context.Context, history.Key) (int64, bool, error) {
	return 0, false, errors.New("disk gone")
}

func (failingStore) Set(context.Context, history.Key, int64) error {
	return errors.New("disk gone")
}

func stored(t *testing.T, s history.Store, site string) int64 {
	t.Helper()
	v, _, err := s.Get(context.Background(), history.WatermarkKey(site))
	require.NoError(t, err)
	return v
}

func TestRunOnceAdvancesWatermarkAndDelivers(t *testing.T) {
	store := history.NewMemoryStore()
	entry := types.Entry{Title: "業務提携のお知らせ"}
	scanner := &fakeScanner{site: "nikkei", results: []types.Disclosure{
		{LatestEntryTime: 202401151030, Entries: []types.Entry{entry}},
		{LatestEntryTime: 202401151030},
	}}
	deliverer := &fakeDeliverer{}
	p := New([]Scanner{scanner}, store, nil, deliverer, zap.NewNop())

	results, ran := p.RunOnce(context.Background())
	require.True(t, ran)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Stats.Sent)
	assert.Equal(t, int64(202401151030), stored(t, store, "nikkei"))

	// the second cycle starts from the stored watermark and delivers nothing new
	_, ran = p.RunOnce(context.Background())
	require.True(t, ran)
	assert.Equal(t, []types.Watermark{0, 202401151030}, scanner.seen)
	assert.Equal(t, []types.Entry{entry}, deliverer.delivered)
}

func TestRunOnceKeepsWatermarkWhenScanFindsNothing(t *testing.T) {
	store := history.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), history.WatermarkKey("nikkei"), 202401150900))

	scanner := &fakeScanner{site: "nikkei", results: []types.Disclosure{{}}}
	p := New([]Scanner{scanner}, store, nil, &fakeDeliverer{}, zap.NewNop())

	results, _ := p.RunOnce(context.Background())
	assert.Equal(t, types.Watermark(202401150900), results[0].Previous)
	assert.Equal(t, int64(202401150900), stored(t, store, "nikkei"))
}

func TestRunOnceSitesUseSeparateWatermarks(t *testing.T) {
	store := history.NewMemoryStore()
	a := &fakeScanner{site: "nikkei", results: []types.Disclosure{{LatestEntryTime: 202401151000}}}
	b := &fakeScanner{site: "tdnet", results: []types.Disclosure{{LatestEntryTime: 202401151015}}}
	p := New([]Scanner{a, b}, store, nil, nil, zap.NewNop())

	results, _ := p.RunOnce(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, int64(202401151000), stored(t, store, "nikkei"))
	assert.Equal(t, int64(202401151015), stored(t, store, "tdnet"))
}

func TestRunOnceSurvivesStoreFailures(t *testing.T) {
	scanner := &fakeScanner{site: "nikkei", results: []types.Disclosure{
		{LatestEntryTime: 202401151030, Entries: []types.Entry{{Title: "x"}}},
	}}
	deliverer := &fakeDeliverer{}
	p := New([]Scanner{scanner}, failingStore{}, nil, deliverer, zap.NewNop())

	results, ran := p.RunOnce(context.Background())
	require.True(t, ran)
	assert.Equal(t, types.Watermark(0), results[0].Previous)
	assert.Len(t, deliverer.delivered, 1)
}

func TestRunOnceSkipsOverlappingCycle(t *testing.T) {
	scanner := &fakeScanner{
		site:    "nikkei",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := New([]Scanner{scanner}, history.NewMemoryStore(), nil, nil, zap.NewNop())

	done := make(chan bool)
	go func() {
		_, ran := p.RunOnce(context.Background())
		done <- ran
	}()

	<-scanner.entered
	_, ran := p.RunOnce(context.Background())
	assert.False(t, ran)

	close(scanner.release)
	assert.True(t, <-done)
	assert.Len(t, scanner.seen, 1)
}

func TestTickHonoursCancellationDuringSettle(t *testing.T) {
	scanner := &fakeScanner{site: "nikkei"}
	p := New([]Scanner{scanner}, history.NewMemoryStore(), nil, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	p.tick(ctx, time.Hour)
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, scanner.seen)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	p := New(nil, history.NewMemoryStore(), nil, nil, zap.NewNop())
	err := p.Start(context.Background(), "every minute", 0, time.UTC)
	assert.Error(t, err)
}
