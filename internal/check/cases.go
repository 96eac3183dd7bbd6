package check

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// Kind selects the property being checked.
type Kind string

// Supported kinds.
const (
	KindPrime  Kind = "prime"
	KindGCD    Kind = "gcd"
	KindDivMod Kind = "divmod"
)

// primalityRounds matches the Miller-Rabin rounds used to pick candidates.
const primalityRounds = 25

// MinBits is the narrowest operand width that still has a non-zero prime
// below 2^bits.
const MinBits = 2

// ErrBitsTooSmall indicates an operand width below MinBits.
var ErrBitsTooSmall = errors.New("operand width too small")

// ParseKind validates a kind name.
func ParseKind(name string) (Kind, error) {
	switch k := Kind(name); k {
	case KindPrime, KindGCD, KindDivMod:
		return k, nil
	default:
		return "", fmt.Errorf("unknown check %q: want prime, gcd or divmod", name)
	}
}

// Query is one command and the answer expected from the kernel.
type Query struct {
	Command string
	Want    string
}

// Case is one generated trial. All of its queries must match.
type Case struct {
	Index   int
	Inputs  []*big.Int
	Queries []Query
}

// Generator produces cases from a source of randomness.
type Generator struct {
	rand io.Reader
	bits int
}

// NewGenerator returns a generator of bits-wide operands. A nil reader uses
// crypto/rand.
func NewGenerator(r io.Reader, bits int) *Generator {
	if r == nil {
		r = rand.Reader
	}

	return &Generator{rand: r, bits: bits}
}

// Next builds the case with the given index.
func (g *Generator) Next(kind Kind, index int) (*Case, error) {
	if g.bits < MinBits {
		return nil, fmt.Errorf("%w: %d bits, want at least %d", ErrBitsTooSmall, g.bits, MinBits)
	}

	switch kind {
	case KindPrime:
		p, err := g.prime()
		if err != nil {
			return nil, err
		}

		return PrimeCase(index, p), nil
	case KindGCD:
		u, err := g.unsigned()
		if err != nil {
			return nil, err
		}

		v, err := g.unsigned()
		if err != nil {
			return nil, err
		}

		return GCDCase(index, u, v), nil
	case KindDivMod:
		a, err := g.signed()
		if err != nil {
			return nil, err
		}

		b, err := g.signed()
		if err != nil {
			return nil, err
		}

		return DivModCase(index, a, b), nil
	default:
		return nil, fmt.Errorf("unknown check %q", kind)
	}
}

// unsigned returns a random non-zero integer below 2^bits.
func (g *Generator) unsigned() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(g.bits))

	for {
		n, err := rand.Int(g.rand, limit)
		if err != nil {
			return nil, fmt.Errorf("random integer: %w", err)
		}

		if n.Sign() != 0 {
			return n, nil
		}
	}
}

// signed returns a random non-zero integer of magnitude below 2^bits.
func (g *Generator) signed() (*big.Int, error) {
	n, err := g.unsigned()
	if err != nil {
		return nil, err
	}

	var sign [1]byte
	if _, err := io.ReadFull(g.rand, sign[:]); err != nil {
		return nil, fmt.Errorf("random sign: %w", err)
	}

	if sign[0]&1 == 1 {
		n.Neg(n)
	}

	return n, nil
}

// prime draws integers until one passes the primality test.
func (g *Generator) prime() (*big.Int, error) {
	for {
		n, err := g.unsigned()
		if err != nil {
			return nil, err
		}

		if n.ProbablyPrime(primalityRounds) {
			return n, nil
		}
	}
}

// PrimeCase asks whether p is prime; p is expected to be prime.
func PrimeCase(index int, p *big.Int) *Case {
	want := "False"
	if p.ProbablyPrime(primalityRounds) {
		want = "True"
	}

	return &Case{
		Index:   index,
		Inputs:  []*big.Int{p},
		Queries: []Query{{Command: fmt.Sprintf("PrimeQ[%s]", p), Want: want}},
	}
}

// GCDCase asks for the greatest common divisor of u and v.
func GCDCase(index int, u, v *big.Int) *Case {
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(u), new(big.Int).Abs(v))

	return &Case{
		Index:   index,
		Inputs:  []*big.Int{u, v},
		Queries: []Query{{Command: fmt.Sprintf("GCD[%s,%s]", u, v), Want: gcd.String()}},
	}
}

// DivModCase asks for the quotient and remainder of a divided by b with
// floor rounding, as the kernel's QuotientRemainder defines them.
func DivModCase(index int, a, b *big.Int) *Case {
	q, r := FloorDivMod(a, b)
	expr := fmt.Sprintf("QuotientRemainder[%s, %s]", a, b)

	return &Case{
		Index:  index,
		Inputs: []*big.Int{a, b},
		Queries: []Query{
			{Command: "First[" + expr + "]", Want: q.String()},
			{Command: "Last[" + expr + "]", Want: r.String()},
		},
	}
}

// FloorDivMod divides a by b rounding the quotient toward negative infinity.
// The remainder takes the sign of b.
func FloorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	// DivMod rounds so that the remainder is never negative.
	q, m := new(big.Int).DivMod(a, b, new(big.Int))

	if b.Sign() < 0 && m.Sign() != 0 {
		m.Add(m, b)
		q.Sub(q, big.NewInt(1))
	}

	return q, m
}
