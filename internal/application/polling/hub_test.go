package polling_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/intelliservice-api/internal/application/polling"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingRecorder struct {
	mu     sync.Mutex
	ticks  int
	errs   int
	counts map[string]int
}

func (r *countingRecorder) PollTick(string)  { r.mu.Lock(); r.ticks++; r.mu.Unlock() }
func (r *countingRecorder) PollError(string) { r.mu.Lock(); r.errs++; r.mu.Unlock() }
func (r *countingRecorder) PollSubscribers(topic string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[topic] = n
}

func newHub(interval time.Duration, rec polling.Recorder) *polling.Hub {
	return polling.NewHub(polling.Intervals{Default: interval}, rec, zerolog.Nop())
}

func recv(t *testing.T, ch <-chan polling.Snapshot) polling.Snapshot {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "canal cerrado")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("sin instantánea")
		return polling.Snapshot{}
	}
}

func TestSubscribe_PrimeraLecturaInmediata(t *testing.T) {
	hub := newHub(time.Hour, nil)
	defer hub.Close()

	ch, unsub := hub.Subscribe(context.Background(), polling.TrackingTopic("c-1"), func(context.Context) (any, error) {
		return "ok", nil
	})
	defer unsub()

	s := recv(t, ch)
	assert.Equal(t, "ok", s.Data)
	assert.Equal(t, uint64(1), s.Seq)
	assert.Equal(t, "tracking:c-1", s.Topic)
}

func TestSubscribe_UnSoloCicloPorTopico(t *testing.T) {
	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}
	rec := &countingRecorder{}
	hub := newHub(time.Hour, rec)
	defer hub.Close()

	ch1, unsub1 := hub.Subscribe(context.Background(), "tracking", fetch)
	recv(t, ch1)
	ch2, unsub2 := hub.Subscribe(context.Background(), "tracking", fetch)
	// el segundo suscriptor recibe la última instantánea sin nueva lectura
	s := recv(t, ch2)
	assert.Equal(t, uint64(1), s.Seq)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, hub.Topics())

	rec.mu.Lock()
	assert.Equal(t, 2, rec.counts["tracking"])
	rec.mu.Unlock()

	unsub1()
	assert.Equal(t, 1, hub.Topics())
	unsub2()
	assert.Equal(t, 0, hub.Topics())
}

func TestSubscribe_SeqMonotonicoEnCadaTick(t *testing.T) {
	hub := newHub(10*time.Millisecond, nil)
	defer hub.Close()

	ch, unsub := hub.Subscribe(context.Background(), "ticket-progress:t-1", func(context.Context) (any, error) {
		return 1, nil
	})
	defer unsub()

	var last uint64
	for i := 0; i < 3; i++ {
		s := recv(t, ch)
		assert.Greater(t, s.Seq, last)
		last = s.Seq
	}
}

func TestSubscribe_SuscriptorLentoSoloVeLaMasReciente(t *testing.T) {
	hub := newHub(5*time.Millisecond, nil)
	defer hub.Close()

	ch, unsub := hub.Subscribe(context.Background(), "tracking", func(context.Context) (any, error) {
		return nil, nil
	})
	defer unsub()

	time.Sleep(60 * time.Millisecond)
	s := recv(t, ch)
	assert.Greater(t, s.Seq, uint64(1), "la instantánea pendiente debe ser reemplazada")
}

func TestSubscribe_ErrorConservaUltimaInstantanea(t *testing.T) {
	var calls atomic.Int32
	rec := &countingRecorder{}
	hub := newHub(5*time.Millisecond, rec)
	defer hub.Close()

	ch, unsub := hub.Subscribe(context.Background(), "tracking", func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "bueno", nil
		}
		return nil, errors.New("db caída")
	})
	defer unsub()

	s := recv(t, ch)
	assert.Equal(t, "bueno", s.Data)

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.errs >= 2
	}, 2*time.Second, 5*time.Millisecond)

	// nadie más publicó: el segundo suscriptor recibe la misma instantánea buena
	ch2, unsub2 := hub.Subscribe(context.Background(), "tracking", nil)
	defer unsub2()
	s2 := recv(t, ch2)
	assert.Equal(t, "bueno", s2.Data)
	assert.Equal(t, uint64(1), s2.Seq)
}

func TestSubscribe_CancelarContextoCierraCanal(t *testing.T) {
	hub := newHub(time.Hour, nil)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := hub.Subscribe(ctx, "tracking", func(context.Context) (any, error) { return 1, nil })
	recv(t, ch)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Topics() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRefresh_DescartaRespuestaVieja(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	hub := newHub(time.Hour, nil)
	defer hub.Close()

	ch, unsub := hub.Subscribe(context.Background(), "tracking", func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			// primera lectura lenta: termina después del refresh
			select {
			case <-release:
			case <-ctx.Done():
			}
			return "vieja", nil
		}
		return "nueva", nil
	})
	defer unsub()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.True(t, hub.Refresh(context.Background(), "tracking"))
	s := recv(t, ch)
	assert.Equal(t, "nueva", s.Data)
	assert.Equal(t, uint64(2), s.Seq)

	close(release)
	select {
	case s := <-ch:
		t.Fatalf("no debía publicarse la respuesta vieja: %v", s.Data)
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, hub.Refresh(context.Background(), "desconocido"))
}

func TestClose_CierraCanalesYNoFugaGoroutines(t *testing.T) {
	hub := newHub(time.Millisecond, nil)
	chans := make([]<-chan polling.Snapshot, 0, 3)
	for _, topic := range []string{"tracking", "ticket-progress:a", "ticket-progress:b"} {
		ch, _ := hub.Subscribe(context.Background(), topic, func(context.Context) (any, error) { return 1, nil })
		chans = append(chans, ch)
	}
	hub.Close()
	hub.Close()

	for _, ch := range chans {
		for range ch {
		}
	}
	ch, unsub := hub.Subscribe(context.Background(), "tracking", nil)
	unsub()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestClose_ConSuscripcionesConcurrentes(t *testing.T) {
	hub := newHub(time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	chans := make(chan (<-chan polling.Snapshot), 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, _ := hub.Subscribe(ctx, "tracking", func(context.Context) (any, error) { return 1, nil })
			chans <- ch
		}()
	}
	hub.Close()
	wg.Wait()
	close(chans)

	for ch := range chans {
		for range ch {
		}
	}
	assert.Equal(t, 0, hub.Topics())
}
