package adminfeed

// Client is a connected administrator. The hub only talks to it through its
// send channel, so tests and other transports can stand in for a websocket.
type Client interface {
	// GetID identifies the connection; one admin may hold several.
	GetID() string
	// GetUserID returns the administrator behind the connection.
	GetUserID() string
	// GetSendChannel returns the channel the hub writes feed messages to.
	GetSendChannel() chan<- Message
	// Run starts the client's pumps.
	Run()
	// Close shuts the send channel; the write pump then closes the connection.
	Close()
}
