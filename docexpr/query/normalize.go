package query

// Negate returns the predicate matching exactly what n does not, with the
// negation pushed down to the leaves:
//
//	!(a && b)       -> !a || !b
//	!(f == c)       -> f != c
//	!(f < c)        -> f >= c
//	!(f in vs)      -> f not in vs
//	!!n             -> n
func Negate(n Node) Node {
	switch x := n.(type) {
	case Compare:
		x.Op = x.Op.Negate()
		return x
	case Membership:
		x.Negated = !x.Negated
		return x
	case Logical:
		return Logical{Op: x.Op.Dual(), Left: Negate(x.Left), Right: Negate(x.Right)}
	case Not:
		return Normalize(x.Inner)
	default:
		return Not{Inner: n}
	}
}

// Normalize removes every Not that sits above a Compare, Membership or
// Logical node. Build output is already normalized; this is for hand-built
// trees.
func Normalize(n Node) Node {
	switch x := n.(type) {
	case Not:
		return Negate(Normalize(x.Inner))
	case Logical:
		return Logical{Op: x.Op, Left: Normalize(x.Left), Right: Normalize(x.Right)}
	default:
		return n
	}
}
