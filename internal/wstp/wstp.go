//go:build wstp && cgo

package wstp

/*
#cgo LDFLAGS: -lWSTP64i4 -lm -lpthread -lrt -ldl -luuid
#include <stdlib.h>
#include <string.h>
#include "wstp.h"

static WSENV initialize(void) { return WSInitialize((WSEnvironmentParameter)0); }
*/
import "C"

import (
	"log/slog"
	"unsafe"

	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/packet"
)

// Available reports whether the library binding is compiled in.
const Available = true

// Library creates environments from the vendor library.
type Library struct {
	log *slog.Logger
}

var (
	_ native.Native      = (*Library)(nil)
	_ native.Environment = (*environment)(nil)
	_ native.Link        = (*link)(nil)
)

// New returns the library binding.
func New(log *slog.Logger) (*Library, error) {
	return &Library{log: log.With("component", "wstp")}, nil
}

// Initialize calls WSInitialize.
func (l *Library) Initialize() native.Environment {
	env := C.initialize()
	if env == nil {
		l.log.Error("WSInitialize failed")

		return nil
	}

	return &environment{log: l.log, env: env}
}

type environment struct {
	log *slog.Logger
	env C.WSENV
}

func (e *environment) Open(argv [][]byte) native.Link {
	// The count includes the nil terminator, which the library tolerates.
	argc := len(argv)

	// The library must not see Go memory holding Go pointers, so the vector
	// is copied into C memory for the duration of the call.
	cargv := (**C.char)(C.malloc(C.size_t(argc+1) * C.size_t(unsafe.Sizeof(uintptr(0)))))
	defer C.free(unsafe.Pointer(cargv))

	slots := unsafe.Slice(cargv, argc+1)

	for i, arg := range argv {
		if arg == nil {
			slots[i] = nil

			continue
		}

		slots[i] = (*C.char)(C.CBytes(arg))
	}

	slots[argc] = nil

	defer func() {
		for i := range argc {
			if slots[i] != nil {
				C.free(unsafe.Pointer(slots[i]))
			}
		}
	}()

	var errno C.int

	lp := C.WSOpenArgcArgv(e.env, C.int(argc), cargv, &errno)
	if lp == nil {
		e.log.Error("WSOpenArgcArgv failed", "code", int(errno))

		return nil
	}

	return &link{lp: lp}
}

func (e *environment) Deinitialize() {
	C.WSDeinitialize(e.env)
}

type link struct {
	lp C.WSLINK
}

func (l *link) Close() int {
	C.WSClose(l.lp)

	return 0
}

func (l *link) NextPacket() packet.Tag {
	return packet.Tag(C.WSNextPacket(l.lp))
}

func (l *link) NewPacket() int {
	return int(C.WSNewPacket(l.lp))
}

func (l *link) PutFunction(head string, argc int) bool {
	cs := C.CString(head)
	defer C.free(unsafe.Pointer(cs))

	return C.WSPutFunction(l.lp, cs, C.int(argc)) != 0
}

func (l *link) PutString(s string) bool {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))

	return C.WSPutString(l.lp, cs) != 0
}

func (l *link) EndPacket() bool {
	return C.WSEndPacket(l.lp) != 0
}

func (l *link) Error() int {
	return int(C.WSError(l.lp))
}

func (l *link) ErrorMessage() string {
	msg := C.WSErrorMessage(l.lp)
	if msg == nil {
		return ""
	}

	defer C.WSReleaseErrorMessage(l.lp, msg)

	return C.GoString(msg)
}

func (l *link) GetString() (*native.Payload, bool) {
	var cs *C.char

	if C.WSGetString(l.lp, &cs) == 0 {
		return nil, false
	}

	return &native.Payload{
		Data:   unsafe.Slice((*byte)(unsafe.Pointer(cs)), C.strlen(cs)),
		Handle: unsafe.Pointer(cs),
	}, true
}

func (l *link) ReleaseString(p *native.Payload) {
	if p == nil || p.Handle == nil {
		return
	}

	C.WSReleaseString(l.lp, (*C.char)(p.Handle))
	p.Data = nil
	p.Handle = nil
}
