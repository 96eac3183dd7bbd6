// Package client implements the kernel Link used by the public API.
//
// A Link composes a link.Manager, which owns the environment and link
// handles, with a protocol.Channel, which runs one request/response exchange
// per call. The link is acquired when the Link is created and released when
// it is closed, so the handle lifetime follows the Link's scope.
package client
