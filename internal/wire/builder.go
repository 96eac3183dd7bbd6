package wire

// Builder assembles an expression from a sequence of put calls, the way the
// link library receives them: a function head announces its arity and the
// following puts fill its arguments.
type Builder struct {
	root  *Expr
	stack []*frame
}

type frame struct {
	expr *Expr
	argc int
}

// Function puts a function head expecting argc arguments.
func (b *Builder) Function(head string, argc int) error {
	e := &Expr{Head: head, Args: make([]*Expr, 0, argc)}

	if err := b.attach(e); err != nil {
		return err
	}

	if argc > 0 {
		b.stack = append(b.stack, &frame{expr: e, argc: argc})
	}

	return nil
}

// String puts a string leaf.
func (b *Builder) String(s string) error {
	return b.attach(String(s))
}

// Complete returns the finished expression and resets the builder.
func (b *Builder) Complete() (*Expr, error) {
	if b.root == nil || len(b.stack) > 0 {
		return nil, ErrIncomplete
	}

	root := b.root
	b.Reset()

	return root, nil
}

// Reset discards any partially built expression.
func (b *Builder) Reset() {
	b.root = nil
	b.stack = nil
}

func (b *Builder) attach(e *Expr) error {
	if len(b.stack) == 0 {
		if b.root != nil {
			return ErrOverfull
		}

		b.root = e

		return nil
	}

	top := b.stack[len(b.stack)-1]
	top.expr.Args = append(top.expr.Args, e)

	// Pop every frame whose arguments are now complete.
	for len(b.stack) > 0 {
		top = b.stack[len(b.stack)-1]
		if len(top.expr.Args) < top.argc {
			break
		}

		b.stack = b.stack[:len(b.stack)-1]
	}

	return nil
}
