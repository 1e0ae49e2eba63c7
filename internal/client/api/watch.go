package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
)

func (c *Client) SocketToken(ctx context.Context) (notification.SocketTokenResponse, error) {
	var resp notification.SocketTokenResponse
	err := c.do(ctx, call{method: http.MethodGet, resource: ResourceSocketToken, auth: true}, &resp)
	return resp, err
}

// Watch holds one notification socket open and calls fn for every frame
// until ctx ends or the connection drops. The caller owns reconnecting.
func (c *Client) Watch(ctx context.Context, fn func(notification.Message)) error {
	token, err := c.SocketToken(ctx)
	if err != nil {
		return err
	}

	endpoint, err := c.resolver.Resolve(ctx, ResourceNotificationsWS)
	if err != nil {
		return err
	}
	wsURL, err := socketURL(endpoint, token.Token)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			_ = c.store.InvalidateEndpoint(ResourceNotificationsWS)
		}
		return fmt.Errorf("dial notifications: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		var msg notification.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read notification: %w", err)
		}
		fn(msg)
	}
}

func socketURL(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse socket url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("unsupported socket scheme " + u.Scheme)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
