// Package websocket carries live dashboard interaction over gorilla/websocket.
//
// Every connection gets its own Client, and every Client owns an
// interaction.Session, so viewers never see each other's selections. On
// connect the client receives a "connect" message followed by a
// "views:snapshot" with every view. Each "interaction" message from the
// browser is applied to the session and answered with a "views:update"
// holding only the views that event affects:
//
//	-> {"type":"interaction","data":{"type":"show_all"}}
//	<- {"type":"views:update","data":{"event":"show_all","changed":["chart"],...}}
//
// Malformed or invalid messages are answered with an "error" message and
// leave the session unchanged.
package websocket
