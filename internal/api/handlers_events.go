package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/dgallion1/folio/internal/view"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingPeriod   = 30 * time.Second
	wsBuffer       = 32
)

// handleEvents streams view events over a websocket until the client goes
// away. Events that arrive while the client is too slow are dropped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}

	log := s.log.With("view_id", v.ID)
	events := make(chan view.Event, wsBuffer)
	unsubscribe := v.Subscribe(func(e view.Event) {
		select {
		case events <- e:
		default:
			log.Warn("websocket event dropped", "topic", e.Topic)
		}
	})
	defer unsubscribe()

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.AllowedOrigins,
	})
	if err != nil {
		log.Error("open websocket connection", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := c.CloseRead(r.Context())
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case e := <-events:
			if err := write(ctx, c, e); err != nil {
				log.Debug("write event to websocket", "error", err)
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := c.Ping(pctx)
			cancel()
			if err != nil {
				log.Debug("ping to websocket failed", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, e view.Event) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, e)
}
