package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	eventBuffer       = 16
	eventWriteTimeout = 5 * time.Second
)

// events streams every store Event as a JSON text message until the client
// goes away. A subscriber that falls eventBuffer events behind is
// disconnected rather than allowed to stall the store.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.OriginPatterns,
	})
	if err != nil {
		s.log().Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.CloseNow() }()

	sub := uuid.NewString()
	log := s.log().With(zap.String("subscriber", sub))

	ch := make(chan Event, eventBuffer)
	overflow := make(chan struct{})
	var overflowed bool

	unsubscribe := s.Store.Subscribe(func(ev Event) {
		if overflowed {
			return
		}
		select {
		case ch <- ev:
		default:
			overflowed = true
			close(overflow)
		}
	})
	defer unsubscribe()

	log.Info("event subscriber connected")
	defer log.Info("event subscriber disconnected")

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case <-overflow:
			log.Warn("event subscriber too slow")
			_ = conn.Close(websocket.StatusPolicyViolation, "too slow")
			return
		case ev := <-ch:
			if err := writeEvent(ctx, conn, ev); err != nil {
				log.Debug("event write failed", zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, msg)
}
