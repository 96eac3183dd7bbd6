// Package wstp binds the vendor link library through cgo.
//
// The binding is compiled only with the wstp build tag and cgo enabled:
//
//	CGO_CFLAGS=-I$WSTP/CompilerAdditions CGO_LDFLAGS=-L$WSTP/CompilerAdditions \
//	    go build -tags wstp ./...
//
// Without the tag, New reports ErrNativeUnavailable and callers fall back to
// the subprocess transport.
package wstp
