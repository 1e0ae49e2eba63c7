package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/realtime"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
	sseKeepalive     = 30 * time.Second
)

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	GetSocketToken(w http.ResponseWriter, r *http.Request)
	WebSocket(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
	upgrader     websocket.Upgrader
	pingPeriod   time.Duration
}

// NewNotificationHandler creates a new notification handler. Browser
// WebSocket handshakes are accepted from allowedOrigins only.
func NewNotificationHandler(notifService notification.Service, jwtService jwt.Service, allowedOrigins []string) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
		pingPeriod:   wsPingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
			},
		},
	}
}

func toMessage(ev realtime.Event) notification.Message {
	return notification.Message{
		Event: ev.Type,
		Data:  ev.Data,
		At:    ev.At.Format(time.RFC3339),
	}
}

// socketUser validates the ?token= query parameter.
func (h *notificationHandlerImpl) socketUser(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return "", notification.ErrMissingToken
	}
	userID, err := h.jwtService.ValidateSocketToken(token)
	if err != nil {
		return "", notification.ErrInvalidToken
	}
	return userID, nil
}

// GetSocketToken issues a short-lived token for the WebSocket and SSE endpoints
func (h *notificationHandlerImpl) GetSocketToken(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSocketToken(claims.UserID)
	if err != nil {
		slog.Error("Failed to generate socket token", "error", err)
		response.InternalServerError(w, "Failed to generate socket token")
		return
	}

	response.Success(w, notification.SocketTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// WebSocket joins the caller's notification room until either side closes.
func (h *notificationHandlerImpl) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := h.socketUser(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		slog.Warn("WebSocket upgrade failed", "error", err, "user_id", userID)
		return
	}
	defer conn.Close()

	events, cleanup := h.notifService.Subscribe(userID)
	defer cleanup()

	slog.Info("WebSocket connected", "user_id", userID)
	defer slog.Info("WebSocket disconnected", "user_id", userID)

	// reader: only control frames are expected; any read error means the peer is gone
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(wsMaxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg notification.Message) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(msg)
	}

	if err := write(notification.Message{Event: "connected", Data: map[string]string{"user_id": userID}}); err != nil {
		return
	}

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := write(toMessage(ev)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

// Stream handles SSE connection for real-time notifications
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, err := h.socketUser(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(userID)
	defer cleanup()

	writeEvent := func(name string, payload interface{}) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("Failed to encode SSE payload", "error", err)
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeEvent("connected", map[string]string{"user_id": userID}) {
		return
	}

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !writeEvent(ev.Type, toMessage(ev)) {
				return
			}
		case <-keepalive.C:
			if !writeEvent("ping", map[string]int64{"timestamp": time.Now().Unix()}) {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
