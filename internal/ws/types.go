package ws

const (
	// client - server
	MsgClick = "click"
	MsgReset = "reset"
	MsgPing  = "ping"

	// server - client
	MsgView  = "view"
	MsgPong  = "pong"
	MsgError = "error"
)
