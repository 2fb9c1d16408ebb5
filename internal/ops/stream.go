package ops

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	reportWSWriteWait = 10 * time.Second
	reportWSPongWait  = 60 * time.Second
	reportWSPingEvery = (reportWSPongWait * 9) / 10
)

var reportWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// reportWSOutbound is one report line pushed to a subscriber.
type reportWSOutbound struct {
	Type    string `json:"type"`
	BatchID string `json:"batchId,omitempty"`
	Report  string `json:"report,omitempty"`
	Message string `json:"message,omitempty"`
}

// Hub fans report lines out to websocket subscribers. Subscribers register
// per batch id; an empty id subscribes to every batch. Publishing never
// blocks: a subscriber that cannot keep up loses its oldest pending line.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]*reportSub
}

type reportSub struct {
	batchID string
	ch      chan reportWSOutbound
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[int]*reportSub{}}
}

// Publish pushes one report line to every matching subscriber.
func (h *Hub) Publish(batchID, text string) {
	if h == nil {
		return
	}
	out := reportWSOutbound{Type: "report", BatchID: batchID, Report: text}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.batchID != "" && sub.batchID != batchID {
			continue
		}
		pushReportWS(sub.ch, out)
	}
}

func (h *Hub) subscribe(batchID string) (int, chan reportWSOutbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	sub := &reportSub{batchID: batchID, ch: make(chan reportWSOutbound, 32)}
	h.subs[id] = sub
	return id, sub.ch
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// HandleReportsWS upgrades the connection and streams report lines until the
// client goes away. The optional batch_id query parameter narrows the stream.
func (h *Hub) HandleReportsWS(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimSpace(r.URL.Query().Get("batch_id"))

	conn, err := reportWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(reportWSPongWait)); err != nil {
		log.Printf("reports ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(reportWSPongWait))
	})

	id, subCh := h.subscribe(batchID)
	defer h.unsubscribe(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Inbound frames are ignored; reading drains pongs and detects
		// the client closing.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(reportWSPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case out := <-subCh:
			if err := conn.SetWriteDeadline(time.Now().Add(reportWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(reportWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func pushReportWS(ch chan reportWSOutbound, out reportWSOutbound) {
	select {
	case ch <- out:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- out:
	default:
	}
}
