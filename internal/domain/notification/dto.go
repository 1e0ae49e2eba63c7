package notification

// SocketTokenResponse carries the short-lived token for /notifications/ws and /notifications/stream.
type SocketTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Message is the JSON frame written to WebSocket and SSE clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	At    string      `json:"at,omitempty"`
}
