/*
Package ws implements the WebSocket bridge to the browser extension.

The extension keeps one connection open at GET /bridge. Every frame is a
JSON object {"type", "id", "payload"}:

	extension -> service
	  message     payload is a guard message; answered by a reply with the same id
	  navigation  payload is a navigation event; answered by a reply {decision}
	  ack         answers a command; id is the command id
	  ping        answered by pong

	service -> extension
	  command     {command, tabId, url, popup}; the extension must ack it
	  reply, pong, error

Bridge implements browser.Host by sending commands and waiting for the
ack. With no extension attached every command fails with
browser.ErrNotConnected.
*/
package ws
