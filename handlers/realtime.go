// handlers/realtime.go - change-notification websocket server (net/http)
package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"emberfest/middleware"
	"emberfest/services"
	"emberfest/utils"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval
)

var realtimeBroker *services.Broker

// InitRealtimeHandlers wires the change broker into the websocket server.
func InitRealtimeHandlers(broker *services.Broker) {
	realtimeBroker = broker
}

type viewer struct {
	id     string
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

// RealtimeHandler streams change events for one table (optionally one row) to
// the client. Query params: table (required), id (row filter), token (JWT).
// Row-scoped subscriptions need any valid token; a table-wide feed is the
// admin grid's and needs the privileged identity. The subscription is
// released on disconnect, so listeners stay bounded to one per viewer.
func RealtimeHandler(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table != "teams" && table != "player_slots" {
		utils.JSONError(w, http.StatusBadRequest, "Unknown table")
		return
	}

	var rowID uint
	if raw := r.URL.Query().Get("id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, "Invalid row id")
			return
		}
		rowID = uint(parsed)
	}

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		if cookie, err := r.Cookie("token"); err == nil {
			tokenString = cookie.Value
		}
	}

	claims, err := middleware.ParseClaims(tokenString)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid or missing token")
		return
	}

	if rowID == 0 {
		// Table-wide feed: admin grid only.
		isAdmin, _ := claims["is_admin"].(bool)
		email, _ := claims["email"].(string)
		if !isAdmin || !middleware.IsAdminEmail(email) {
			utils.JSONError(w, http.StatusForbidden, "Table-wide feeds require admin access")
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // TODO: restrict origins once the event domain is final
	})
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	v := &viewer{
		id:     uuid.New().String(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}

	subID, events := realtimeBroker.Subscribe(table, rowID)
	defer realtimeBroker.Unsubscribe(subID)

	log.Printf("🔔 Viewer subscribed: %s (table=%s, row=%d)", v.id, table, rowID)

	go v.pingPump()
	go v.readPump()

	v.writePump(events)

	log.Printf("🔕 Viewer disconnected: %s", v.id)
}

// writePump forwards broker events to the socket until either side goes away.
func (v *viewer) writePump(events <-chan services.ChangeEvent) {
	defer v.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(v.ctx, writeWait)
			err := wsjson.Write(ctx, v.conn, ev)
			cancel()

			if err != nil {
				log.Printf("Write error for viewer %s: %v", v.id, err)
				return
			}

		case <-v.ctx.Done():
			return
		}
	}
}

// readPump drains the connection so close frames are processed; viewers never
// send application messages.
func (v *viewer) readPump() {
	defer v.cancel()

	for {
		if _, _, err := v.conn.Read(v.ctx); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				log.Printf("WebSocket closed normally for viewer %s", v.id)
			}
			return
		}
	}
}

// pingPump keeps the connection alive through idle stretches.
func (v *viewer) pingPump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(v.ctx, writeWait)
			err := v.conn.Ping(ctx)
			cancel()

			if err != nil {
				v.cancel()
				return
			}

		case <-v.ctx.Done():
			return
		}
	}
}
