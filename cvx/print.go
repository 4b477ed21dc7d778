package cvx

import (
	"strconv"
	"strings"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (p Parameter) String() string {
	return formatFloat(p.Value())
}

func (v Variable) String() string {
	var b strings.Builder
	b.WriteString(v.source.name)
	if v.source.shape != ShapeScalar {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(v.source.row))
		if v.source.shape == ShapeMatrix {
			b.WriteString(", ")
			b.WriteString(strconv.Itoa(v.source.col))
		}
		b.WriteByte(']')
	}
	if v.IsLinked() {
		b.WriteString("@(")
		b.WriteString(strconv.Itoa(v.source.idx))
		b.WriteByte(')')
	}
	return b.String()
}

func (t Term) String() string {
	if t.Coeff.IsOne() {
		return t.Var.String()
	}
	return formatFloat(t.Coeff.Value()) + " * " + t.Var.String()
}

func (a Affine) String() string {
	var b strings.Builder
	for i, t := range a.Terms {
		b.WriteString(t.String())
		if i != len(a.Terms)-1 {
			b.WriteString(" + ")
		}
	}
	if len(a.Terms) > 0 && !a.Constant.IsZero() {
		b.WriteString(" + ")
	}
	if len(a.Terms) == 0 || !a.Constant.IsZero() {
		b.WriteString(a.Constant.String())
	}
	return b.String()
}

func (p Product) String() string {
	if p.IsSquare() {
		return "(" + p.factors[0].String() + ")^2"
	}
	return "(" + p.factors[0].String() + ") * (" + p.factors[1].String() + ")"
}

func (s Scalar) String() string {
	var b strings.Builder
	if len(s.products) > 0 {
		if s.norm {
			b.WriteByte('(')
		}
		for i, p := range s.products {
			b.WriteString(p.String())
			if i < len(s.products)-1 {
				b.WriteString(" + ")
			}
		}
		if s.norm {
			b.WriteString(")^(1/2)")
		}
	}
	if !s.affine.IsZero() && len(s.products) > 0 {
		b.WriteString(" + ")
	}
	if !s.affine.IsZero() {
		b.WriteString(s.affine.String())
	}
	return b.String()
}

func (c EqualityConstraint) String() string {
	return c.Affine.String() + " == 0"
}

func (c NonnegativeConstraint) String() string {
	return "0 <= " + c.Affine.String()
}

func (c BoxConstraint) String() string {
	return c.Lower.String() + " <= " + c.Middle.String() + " <= " + c.Upper.String()
}

func (c SecondOrderConeConstraint) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range c.Norm {
		b.WriteString("(" + a.String() + ")^2")
		if i != len(c.Norm)-1 {
			b.WriteString(" + ")
		}
	}
	b.WriteString(")^(1/2)")
	b.WriteString(" <= ")
	b.WriteString(c.Affine.String())
	return b.String()
}

func (c Constraint) String() string {
	switch c.kind {
	case KindEquality:
		return c.eq.String()
	case KindNonnegative:
		return c.nn.String()
	case KindBox:
		return c.box.String()
	default:
		return c.soc.String()
	}
}

func (p *Problem) String() string {
	var b strings.Builder
	b.WriteString("Minimize\n")
	b.WriteString(p.cost.String())
	b.WriteString("\n\nSubject to\n\n")

	b.WriteString("Equality Constraints:\n")
	for _, c := range p.equalities {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	b.WriteString("\nPositive Constraints:\n")
	for _, c := range p.nonnegatives {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	b.WriteString("\nBox Constraints:\n")
	for _, c := range p.boxes {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	b.WriteString("\nSecond Order Cone Constraints:\n")
	for _, c := range p.socs {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	b.WriteString("\n")
	return b.String()
}
