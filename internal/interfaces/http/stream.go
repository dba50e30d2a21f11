package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/intelliservice-api/internal/application/polling"
)

const streamHeartbeat = 15 * time.Second

// subscriber lo implementa *polling.Hub.
type subscriber interface {
	Subscribe(ctx context.Context, key string, fetch polling.Fetch) (<-chan polling.Snapshot, func())
}

// topicHub suscripción más lectura forzada.
type topicHub interface {
	subscriber
	Refresh(ctx context.Context, key string) bool
}

// streamTopic responde con Server-Sent Events: un evento "snapshot" por cada instantánea del tópico
// y un comentario de keep-alive cada streamHeartbeat. La suscripción termina cuando el cliente corta
// (falla el Flush) o el hub se cierra.
func streamTopic(c *fiber.Ctx, hub subscriber, key string, fetch polling.Fetch) error {
	c.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	// El contexto de fasthttp no se cancela al desconectarse el cliente.
	ctx, cancel := context.WithCancel(context.Background())
	snaps, unsubscribe := hub.Subscribe(ctx, key, fetch)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				if err := writeSnapshot(w, snap); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeSnapshot(w *bufio.Writer, snap polling.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snap.Seq, data); err != nil {
		return err
	}
	return w.Flush()
}
