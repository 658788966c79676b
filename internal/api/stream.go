package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// streamBuffer is how many undelivered frames one session may queue before
// new frames are dropped for that session. Delivery is best-effort; a client
// that missed updates sees the next changed price.
const streamBuffer = 16

type priceFrame struct {
	Price float64 `json:"price"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// handleStream is the SSE endpoint: one long-lived response per client that
// relays broadcaster notifications as data frames and sends comment-frame
// keepalives in between. The handler goroutine is the only writer, so frames
// from the poll loop and the keepalive timer never interleave.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	frames := make(chan string, streamBuffer)
	sub := s.feed.Subscribe(
		func(price float64) { enqueueFrame(frames, priceFrame{Price: price}) },
		func(err error) { enqueueFrame(frames, errorFrame{Error: err.Error()}) },
	)
	defer s.feed.Unsubscribe(sub)

	if err := writeFrame(w, flusher, ": connected\n\n"); err != nil {
		return
	}

	keepalive := time.NewTicker(s.keepalive)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("[SSE] client disconnected")
			return
		case frame := <-frames:
			if err := writeFrame(w, flusher, frame); err != nil {
				fmt.Printf("[SSE] write failed, closing session: %v\n", err)
				return
			}
		case <-keepalive.C:
			if err := writeFrame(w, flusher, ": ping\n\n"); err != nil {
				fmt.Printf("[SSE] keepalive failed, closing session: %v\n", err)
				return
			}
		}
	}
}

// enqueueFrame never blocks: the broadcaster's fan-out must not stall on one
// slow session. A full buffer drops the frame for this session only.
func enqueueFrame(frames chan<- string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case frames <- "data: " + string(b) + "\n\n":
	default:
	}
}

func writeFrame(w io.Writer, flusher http.Flusher, frame string) error {
	if _, err := io.WriteString(w, frame); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
