// Package websocket provides real-time configuration events via WebSocket.
//
// Clients connect to /api/v1/events/ws. The current snapshot event is sent
// first when the configuration is already published, followed by every
// event on the config topic.
package websocket
