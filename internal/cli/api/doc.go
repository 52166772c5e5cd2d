// Package api provides typed calls for the transport management REST
// API on top of the request pipeline.
//
// Every endpoint wraps its payload in a {success, message, data}
// envelope; listings put a page object in data. Decoding failures of a
// 2xx body surface as domain.ErrMalformedResponse, and an envelope with
// success=false surfaces as domain.ErrUnsuccessful carrying the server
// message.
package api
