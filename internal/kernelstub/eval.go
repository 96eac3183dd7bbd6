package kernelstub

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/wagiedev/mathlink-go/internal/packet"
	"github.com/wagiedev/mathlink-go/internal/wire"
)

// primalityRounds is the number of Miller-Rabin rounds used by PrimeQ.
const primalityRounds = 25

var (
	symTrue   = &node{kind: nodeSymbol, name: "True"}
	symFalse  = &node{kind: nodeSymbol, name: "False"}
	symNull   = &node{kind: nodeSymbol, name: "Null"}
	symFailed = &node{kind: nodeSymbol, name: "$Failed"}
)

// evaluator collects the intermediate packets emitted while evaluating.
type evaluator struct {
	emitted []wire.Packet
}

// Evaluate runs input and returns the packets a kernel would send for it,
// ending with the return packet.
func Evaluate(input string) []wire.Packet {
	ev := &evaluator{}

	n, terminated, err := parse(input)
	if err != nil {
		ev.message("Syntax", "sntx", err.Error())

		return ev.finish(symFailed)
	}

	result := ev.eval(n)
	if terminated {
		result = symNull
	}

	return ev.finish(result)
}

func (ev *evaluator) finish(result *node) []wire.Packet {
	return append(ev.emitted, wire.Packet{
		Tag:     int(packet.Return),
		Payload: atomOf(result),
	})
}

func (ev *evaluator) message(symbol, tag, text string) {
	ev.emitted = append(ev.emitted,
		wire.Packet{
			Tag:     int(packet.Message),
			Payload: &wire.Atom{Kind: wire.KindSymbol, Text: symbol},
		},
		wire.Packet{
			Tag:     int(packet.Text),
			Payload: &wire.Atom{Kind: wire.KindString, Text: fmt.Sprintf("%s::%s: %s", symbol, tag, text)},
		},
	)
}

func (ev *evaluator) print(text string) {
	ev.emitted = append(ev.emitted, wire.Packet{
		Tag:     int(packet.Text),
		Payload: &wire.Atom{Kind: wire.KindString, Text: text},
	})
}

func (ev *evaluator) eval(n *node) *node {
	switch n.kind {
	case nodeInteger, nodeSymbol:
		return n
	case nodeList:
		return &node{kind: nodeList, args: ev.evalAll(n.args)}
	}

	args := ev.evalAll(n.args)
	call := &node{kind: nodeCall, name: n.name, args: args}

	switch n.name {
	case "PrimeQ":
		return ev.primeQ(call)
	case "GCD":
		return ev.gcd(call)
	case "Quotient", "Mod", "QuotientRemainder":
		return ev.division(call)
	case "First", "Last":
		return ev.part(call)
	case "Print":
		ev.print(joinPlain(args))

		return symNull
	default:
		return call
	}
}

func (ev *evaluator) evalAll(nodes []*node) []*node {
	out := make([]*node, len(nodes))
	for i, n := range nodes {
		out[i] = ev.eval(n)
	}

	return out
}

func (ev *evaluator) argx(call *node, want int) bool {
	if len(call.args) == want {
		return true
	}

	ev.message(call.name, "argx",
		fmt.Sprintf("%s called with %d arguments; %d argument(s) expected.", call.name, len(call.args), want))

	return false
}

func (ev *evaluator) primeQ(call *node) *node {
	if !ev.argx(call, 1) {
		return call
	}

	arg := call.args[0]
	if arg.kind != nodeInteger {
		return symFalse
	}

	if new(big.Int).Abs(arg.value).ProbablyPrime(primalityRounds) {
		return symTrue
	}

	return symFalse
}

func (ev *evaluator) gcd(call *node) *node {
	result := new(big.Int)

	for _, arg := range call.args {
		if arg.kind != nodeInteger {
			return call
		}

		result.GCD(nil, nil, result, new(big.Int).Abs(arg.value))
	}

	return integer(result)
}

func (ev *evaluator) division(call *node) *node {
	if !ev.argx(call, 2) {
		return call
	}

	a, b := call.args[0], call.args[1]
	if a.kind != nodeInteger || b.kind != nodeInteger {
		return call
	}

	if b.value.Sign() == 0 {
		ev.message(call.name, "divz", fmt.Sprintf("The argument 0 in %s should be nonzero.", call))

		return call
	}

	q, r := floorDivMod(a.value, b.value)

	switch call.name {
	case "Quotient":
		return integer(q)
	case "Mod":
		return integer(r)
	default:
		return &node{kind: nodeList, args: []*node{integer(q), integer(r)}}
	}
}

func (ev *evaluator) part(call *node) *node {
	if !ev.argx(call, 1) {
		return call
	}

	list := call.args[0]
	if list.kind != nodeList && list.kind != nodeCall {
		ev.message(call.name, "normal", fmt.Sprintf("Nonatomic expression expected at position 1 in %s.", call))

		return call
	}

	if len(list.args) == 0 {
		ev.message(call.name, "nofirst", fmt.Sprintf("%s has zero length and no %s element.", list, strings.ToLower(call.name)))

		return call
	}

	if call.name == "First" {
		return list.args[0]
	}

	return list.args[len(list.args)-1]
}

// floorDivMod returns the quotient rounded toward negative infinity and the
// matching remainder, which has the sign of b.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))

	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}

	return q, r
}

func integer(v *big.Int) *node {
	return &node{kind: nodeInteger, value: v}
}

func joinPlain(nodes []*node) string {
	var b strings.Builder

	for _, n := range nodes {
		b.WriteString(n.String())
	}

	return b.String()
}

func atomOf(n *node) *wire.Atom {
	switch n.kind {
	case nodeInteger:
		return &wire.Atom{Kind: wire.KindInteger, Text: n.value.String()}
	case nodeSymbol:
		return &wire.Atom{Kind: wire.KindSymbol, Text: n.name}
	default:
		return &wire.Atom{Kind: wire.KindString, Text: n.String()}
	}
}
