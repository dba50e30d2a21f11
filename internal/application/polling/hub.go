// Package polling servicio compartido de polling: un único temporizador por tópico sin importar
// cuántos suscriptores tenga.
package polling

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Tipos de tópico. La clave completa lleva la empresa (y la entidad) tras ":".
const (
	TopicTracking       = "tracking"
	TopicTicketProgress = "ticket-progress"
)

// TrackingTopic tópico del mapa de técnicos de una empresa.
func TrackingTopic(companyID string) string {
	return TopicTracking + ":" + companyID
}

// TicketProgressTopic tópico de progreso de un ticket.
func TicketProgressTopic(companyID, ticketID string) string {
	return TopicTicketProgress + ":" + companyID + ":" + ticketID
}

// Fetch lee el estado actual de un tópico.
type Fetch func(ctx context.Context) (any, error)

// Snapshot resultado de una lectura. Seq crece de forma monotónica por tópico.
type Snapshot struct {
	Topic     string    `json:"topic"`
	Seq       uint64    `json:"seq"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Recorder métricas del poller. Lo implementa infrastructure/metrics.
type Recorder interface {
	PollTick(topic string)
	PollError(topic string)
	PollSubscribers(topic string, n int)
}

type nopRecorder struct{}

func (nopRecorder) PollTick(string)             {}
func (nopRecorder) PollError(string)            {}
func (nopRecorder) PollSubscribers(string, int) {}

// Intervals intervalo por tipo de tópico; Default para el resto.
type Intervals struct {
	Default time.Duration
	ByKind  map[string]time.Duration
}

func (iv Intervals) forTopic(key string) time.Duration {
	kind, _, _ := strings.Cut(key, ":")
	if d, ok := iv.ByKind[kind]; ok && d > 0 {
		return d
	}
	if iv.Default > 0 {
		return iv.Default
	}
	return 30 * time.Second
}

// Hub coordina los tópicos activos.
type Hub struct {
	intervals Intervals
	rec       Recorder
	log       zerolog.Logger

	mu     sync.Mutex
	topics map[string]*topic
	closed bool
	wg     sync.WaitGroup
}

type topic struct {
	key    string
	fetch  Fetch
	cancel context.CancelFunc
	subs   map[*subscription]struct{}
	issued atomic.Uint64 // lecturas iniciadas
	seq    uint64        // última publicada; protegido por Hub.mu
	last   *Snapshot
	closed bool
}

type subscription struct {
	ch   chan Snapshot
	stop chan struct{}
	once sync.Once
}

// NewHub crea el hub. rec puede ser nil.
func NewHub(intervals Intervals, rec Recorder, log zerolog.Logger) *Hub {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Hub{intervals: intervals, rec: rec, log: log, topics: map[string]*topic{}}
}

// Subscribe se suscribe al tópico key. El primer suscriptor arranca el ciclo del tópico con una
// lectura inmediata; los siguientes reciben de inmediato la última instantánea si existe.
// El canal tiene capacidad 1 y siempre contiene la instantánea más reciente: un suscriptor lento
// pierde las intermedias, nunca bloquea al hub. La suscripción termina al llamar a la función
// devuelta, al cancelarse ctx o al cerrar el hub; en los tres casos el canal se cierra.
func (h *Hub) Subscribe(ctx context.Context, key string, fetch Fetch) (<-chan Snapshot, func()) {
	sub := &subscription{ch: make(chan Snapshot, 1), stop: make(chan struct{})}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	t, ok := h.topics[key]
	if !ok {
		loopCtx, cancel := context.WithCancel(context.Background())
		t = &topic{key: key, fetch: fetch, cancel: cancel, subs: map[*subscription]struct{}{}}
		h.topics[key] = t
		h.wg.Add(1)
		go h.run(loopCtx, t)
	}
	t.subs[sub] = struct{}{}
	if t.last != nil {
		sub.ch <- *t.last
	}
	h.rec.PollSubscribers(key, len(t.subs))
	// bajo h.mu: Close no puede llegar a Wait antes de este Add
	h.wg.Add(1)
	h.mu.Unlock()

	unsubscribe := func() { h.unsubscribe(t, sub) }

	go func() {
		defer h.wg.Done()
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-sub.stop:
		}
	}()
	return sub.ch, unsubscribe
}

func (h *Hub) unsubscribe(t *topic, sub *subscription) {
	sub.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.detach(t, sub)
		if len(t.subs) == 0 && !t.closed {
			t.closed = true
			t.cancel()
			if h.topics[t.key] == t {
				delete(h.topics, t.key)
			}
		}
		h.rec.PollSubscribers(t.key, len(t.subs))
	})
}

// detach requiere h.mu.
func (h *Hub) detach(t *topic, sub *subscription) {
	if _, ok := t.subs[sub]; !ok {
		return
	}
	delete(t.subs, sub)
	close(sub.stop)
	close(sub.ch)
}

func (h *Hub) run(ctx context.Context, t *topic) {
	defer h.wg.Done()
	ticker := time.NewTicker(h.intervals.forTopic(t.key))
	defer ticker.Stop()

	h.poll(ctx, t)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.poll(ctx, t)
		}
	}
}

func (h *Hub) poll(ctx context.Context, t *topic) {
	seq := t.issued.Add(1)
	data, err := t.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	h.rec.PollTick(t.key)
	if err != nil {
		// se conserva la última instantánea buena
		h.rec.PollError(t.key)
		h.log.Warn().Err(err).Str("topic", t.key).Msg("polling: lectura fallida")
		return
	}
	h.publish(t, Snapshot{Topic: t.key, Seq: seq, Data: data, FetchedAt: time.Now()})
}

// publish descarta respuestas más viejas que la última publicada.
func (h *Hub) publish(t *topic, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t.closed || snap.Seq <= t.seq {
		return
	}
	t.seq = snap.Seq
	t.last = &snap
	for sub := range t.subs {
		select {
		case sub.ch <- snap:
		default:
			// lleno: reemplazar la instantánea pendiente por la nueva
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}

// Refresh fuerza una lectura inmediata de un tópico activo, fuera del ciclo. Si termina después
// de una lectura iniciada más tarde, su resultado se descarta.
func (h *Hub) Refresh(ctx context.Context, key string) bool {
	h.mu.Lock()
	t, ok := h.topics[key]
	h.mu.Unlock()
	if !ok {
		return false
	}
	h.poll(ctx, t)
	return true
}

// Topics cantidad de tópicos activos.
func (h *Hub) Topics() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics)
}

// Close detiene todos los ciclos, cierra los canales de suscripción y espera a que terminen
// todas las goroutines del hub.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for key, t := range h.topics {
		t.closed = true
		t.cancel()
		for sub := range t.subs {
			sub.once.Do(func() { h.detach(t, sub) })
		}
		delete(h.topics, key)
	}
	h.mu.Unlock()
	h.wg.Wait()
}
