// Package wire defines the JSON line framing spoken between the subprocess
// transport and a kernel process.
//
// Each frame is one JSON object terminated by a newline. The client writes
// request frames carrying an expression tree; the kernel answers with packet
// frames carrying a packet tag and an optional atomic payload:
//
//	> {"id":"01J...","expr":{"head":"EvaluatePacket","args":[{"head":"ToExpression","args":[{"str":"PrimeQ[17]"}]}]}}
//	< {"id":"01J...","tag":3,"payload":{"kind":"symbol","text":"True"}}
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Atom kinds carried in a packet payload.
const (
	KindString  = "string"
	KindSymbol  = "symbol"
	KindInteger = "integer"
)

var (
	// ErrIncomplete indicates a packet was ended before all arguments were put.
	ErrIncomplete = errors.New("wire: expression incomplete")

	// ErrOverfull indicates an argument was put after the expression was complete.
	ErrOverfull = errors.New("wire: expression already complete")
)

// Expr is an expression tree: either a function with a head and arguments,
// or a string leaf.
type Expr struct {
	Head string  `json:"head,omitempty"`
	Args []*Expr `json:"args,omitempty"`
	Str  *string `json:"str,omitempty"`
}

// String returns a string leaf.
func String(s string) *Expr {
	return &Expr{Str: &s}
}

// Function returns a function expression.
func Function(head string, args ...*Expr) *Expr {
	return &Expr{Head: head, Args: args}
}

// Request is a frame written to the kernel.
type Request struct {
	ID   string `json:"id"`
	Expr *Expr  `json:"expr"`
}

// Atom is the payload of a packet.
type Atom struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Packet is a frame written by the kernel.
type Packet struct {
	ID      string `json:"id,omitempty"`
	Tag     int    `json:"tag"`
	Payload *Atom  `json:"payload,omitempty"`
}

// Encode marshals a frame and terminates it with a newline.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}

	return append(data, '\n'), nil
}

// DecodePacket parses one kernel frame.
func DecodePacket(line []byte) (*Packet, error) {
	var p Packet

	if err := json.Unmarshal(line, &p); err != nil {
		return nil, fmt.Errorf("wire: decode packet: %w", err)
	}

	return &p, nil
}

// DecodeRequest parses one client frame.
func DecodeRequest(line []byte) (*Request, error) {
	var r Request

	if err := json.Unmarshal(line, &r); err != nil {
		return nil, fmt.Errorf("wire: decode request: %w", err)
	}

	if r.Expr == nil {
		return nil, fmt.Errorf("wire: decode request: missing expr")
	}

	return &r, nil
}

// Unwrap returns the string inside head1[head2[...[str]]] if e has exactly
// that shape.
func (e *Expr) Unwrap(heads ...string) (string, bool) {
	cur := e

	for _, head := range heads {
		if cur == nil || cur.Head != head || len(cur.Args) != 1 {
			return "", false
		}

		cur = cur.Args[0]
	}

	if cur == nil || cur.Str == nil {
		return "", false
	}

	return *cur.Str, true
}
