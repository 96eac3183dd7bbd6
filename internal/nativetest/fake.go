// Package nativetest provides a synthetic packet source implementing the native
// link interfaces, so the lifecycle and protocol layers can be tested without
// launching a kernel.
package nativetest

import (
	"strings"
	"sync"

	"github.com/wagiedev/mathlink-go/internal/native"
	"github.com/wagiedev/mathlink-go/internal/packet"
)

// Step names accepted by Fake.FailStep besides a function head.
const (
	StepPutString = "PutString"
	StepEndPacket = "EndPacket"
)

// Packet is one scripted incoming packet.
type Packet struct {
	Tag     packet.Tag
	Payload string

	// NoPayload makes GetString fail while this packet is current.
	NoPayload bool

	// ErrorOnSkip is raised on the error indicator when this packet is discarded.
	ErrorOnSkip int
}

// Request records one outgoing packet.
type Request struct {
	Heads   []string
	Strings []string
}

// Command returns the last string argument of the request.
func (r Request) Command() string {
	if len(r.Strings) == 0 {
		return ""
	}

	return r.Strings[len(r.Strings)-1]
}

// Fake is a scripted native library. The zero value opens links that answer
// nothing; set Script or Respond to feed packets.
type Fake struct {
	mu sync.Mutex

	// FailInitialize makes Initialize return nil.
	FailInitialize bool

	// FailOpen makes Environment.Open return nil.
	FailOpen bool

	// FailStep makes the named outgoing step fail: a function head passed to
	// PutFunction, StepPutString, or StepEndPacket.
	FailStep string

	// FailGetString makes every GetString call fail.
	FailGetString bool

	// PartialGetString makes GetString fail after allocating a payload, the
	// way a native read can fail midway through a string.
	PartialGetString bool

	// Script is the packet stream a newly opened link starts with.
	Script []Packet

	// Respond, when set, appends packets to the stream after each EndPacket.
	Respond func(command string) []Packet

	Initializes   int
	Deinitializes int
	Opens         int
	Closes        int
	Argv          [][]string
	Requests      []Request
	Skips         int
	Reads         int
	Releases      int
	Trace         []string
}

// Compile-time verification that the fake satisfies the native interfaces.
var (
	_ native.Native      = (*Fake)(nil)
	_ native.Environment = (*fakeEnvironment)(nil)
	_ native.Link        = (*fakeLink)(nil)
)

// Initialize implements native.Native.
func (f *Fake) Initialize() native.Environment {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailInitialize {
		return nil
	}

	f.Initializes++

	return &fakeEnvironment{fake: f}
}

// Outstanding returns how many payloads were read but not released.
func (f *Fake) Outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.Reads - f.Releases
}

// LastRequest returns the most recent outgoing packet.
func (f *Fake) LastRequest() (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Requests) == 0 {
		return Request{}, false
	}

	return f.Requests[len(f.Requests)-1], true
}

func (f *Fake) trace(s string) {
	f.Trace = append(f.Trace, s)
}

type fakeEnvironment struct {
	fake *Fake
}

func (e *fakeEnvironment) Open(argv [][]byte) native.Link {
	f := e.fake

	f.mu.Lock()
	defer f.mu.Unlock()

	args := make([]string, 0, len(argv))

	for _, buf := range argv {
		if buf == nil {
			break
		}

		args = append(args, cString(buf))
	}

	f.Argv = append(f.Argv, args)

	if f.FailOpen {
		return nil
	}

	f.Opens++

	return &fakeLink{
		fake:  f,
		queue: append([]Packet(nil), f.Script...),
	}
}

func (e *fakeEnvironment) Deinitialize() {
	e.fake.mu.Lock()
	defer e.fake.mu.Unlock()

	e.fake.Deinitializes++
}

type fakeLink struct {
	fake    *Fake
	queue   []Packet
	current *Packet
	pending Request
	errCode int
	closed  bool
}

func (l *fakeLink) Close() int {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.Closes++
	l.closed = true

	return 0
}

func (l *fakeLink) NextPacket() packet.Tag {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	if l.closed || l.errCode != native.ErrOK || len(l.queue) == 0 {
		l.fake.trace("NextPacket=0")

		return packet.Illegal
	}

	p := l.queue[0]
	l.queue = l.queue[1:]
	l.current = &p

	l.fake.trace("NextPacket=" + p.Tag.String())

	return p.Tag
}

func (l *fakeLink) NewPacket() int {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.Skips++
	l.fake.trace("NewPacket")

	if l.current != nil && l.current.ErrorOnSkip != native.ErrOK {
		l.errCode = l.current.ErrorOnSkip
	}

	l.current = nil

	return 1
}

func (l *fakeLink) PutFunction(head string, argc int) bool {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.trace("PutFunction(" + head + ")")

	if l.closed || l.fake.FailStep == head {
		l.errCode = native.ErrPutSequence

		return false
	}

	l.pending.Heads = append(l.pending.Heads, head)

	return true
}

func (l *fakeLink) PutString(s string) bool {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.trace("PutString")

	if l.closed || l.fake.FailStep == StepPutString {
		l.errCode = native.ErrPutSequence

		return false
	}

	l.pending.Strings = append(l.pending.Strings, s)

	return true
}

func (l *fakeLink) EndPacket() bool {
	l.fake.mu.Lock()

	l.fake.trace("EndPacket")

	if l.closed || l.fake.FailStep == StepEndPacket {
		l.errCode = native.ErrPutSequence
		l.fake.mu.Unlock()

		return false
	}

	req := l.pending
	l.pending = Request{}
	l.fake.Requests = append(l.fake.Requests, req)
	respond := l.fake.Respond
	l.fake.mu.Unlock()

	if respond != nil {
		packets := respond(req.Command())

		l.fake.mu.Lock()
		l.queue = append(l.queue, packets...)
		l.fake.mu.Unlock()
	}

	return true
}

func (l *fakeLink) Error() int {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	return l.errCode
}

func (l *fakeLink) ErrorMessage() string {
	switch l.Error() {
	case native.ErrOK:
		return "ok"
	case native.ErrPutSequence:
		return "put out of sequence"
	case native.ErrGetSequence:
		return "get out of sequence"
	default:
		return "link failure"
	}
}

func (l *fakeLink) GetString() (*native.Payload, bool) {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.trace("GetString")

	if l.fake.FailGetString || l.current == nil || l.current.NoPayload {
		l.errCode = native.ErrGetSequence

		return nil, false
	}

	l.fake.Reads++

	p := &native.Payload{Data: []byte(l.current.Payload)}
	l.current = nil

	if l.fake.PartialGetString {
		l.errCode = native.ErrGetSequence

		return p, false
	}

	return p, true
}

func (l *fakeLink) ReleaseString(p *native.Payload) {
	l.fake.mu.Lock()
	defer l.fake.mu.Unlock()

	l.fake.trace("ReleaseString")

	if p == nil {
		return
	}

	l.fake.Releases++

	// Poison the released buffer so callers that kept a reference notice.
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// Returning answers every command with a single return packet produced by fn.
func Returning(fn func(command string) string) func(string) []Packet {
	return func(command string) []Packet {
		return []Packet{{Tag: packet.Return, Payload: fn(command)}}
	}
}

// PrimeOracle answers PrimeQ[17] style commands for a few small inputs.
func PrimeOracle(command string) string {
	switch strings.TrimSuffix(command, packet.StatementTerminator) {
	case "PrimeQ[2]", "PrimeQ[3]", "PrimeQ[5]", "PrimeQ[7]", "PrimeQ[11]", "PrimeQ[13]", "PrimeQ[17]":
		return "True"
	case "PrimeQ[1]", "PrimeQ[4]", "PrimeQ[9]", "PrimeQ[15]", "PrimeQ[18]":
		return "False"
	default:
		return command
	}
}

func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}

	return string(buf)
}
