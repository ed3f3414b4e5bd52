package board

// Path is an ordered sequence of reachable positions along one direction.
type Path []Position

// Movement is the set of paths a piece may travel from Origin.
// Raw movements only know the piece shape; constrained ones are pruned by
// board occupancy.
type Movement struct {
	Origin      Position
	Paths       []Path
	Constrained bool
}

// Contains returns true if any path reaches p.
func (m Movement) Contains(p Position) bool {
	for _, path := range m.Paths {
		for _, q := range path {
			if q == p {
				return true
			}
		}
	}
	return false
}

// Targets flattens all paths into a single list of destinations.
func (m Movement) Targets() []Position {
	var out []Position
	for _, path := range m.Paths {
		out = append(out, path...)
	}
	return out
}

var knightJumps = [8]Direction{
	{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
	{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
}

// RawMovement returns the unconstrained movement of a piece of the given
// kind and color standing on pos.
func RawMovement(kind Kind, color Color, pos Position) Movement {
	m := Movement{Origin: pos}

	switch kind {
	case King:
		for _, d := range Straights {
			m.addStep(pos.Offset(d.DR, d.DC))
		}
		for _, d := range Diagonals {
			m.addStep(pos.Offset(d.DR, d.DC))
		}
	case Knight:
		for _, d := range knightJumps {
			m.addStep(pos.Offset(d.DR, d.DC))
		}
	case Rook:
		m.addRays(pos, Straights[:])
	case Bishop:
		m.addRays(pos, Diagonals[:])
	case Queen:
		m.addRays(pos, Straights[:])
		m.addRays(pos, Diagonals[:])
	case Pawn:
		fwd := color.Forward()
		one := pos.Offset(fwd, 0)
		if one.Valid() {
			path := Path{one}
			if pos.Row == pawnRow(color) {
				path = append(path, pos.Offset(2*fwd, 0))
			}
			m.Paths = append(m.Paths, path)
		}
		m.addStep(pos.Offset(fwd, -1))
		m.addStep(pos.Offset(fwd, 1))
	}

	return m
}

func (m *Movement) addStep(p Position) {
	if p.Valid() {
		m.Paths = append(m.Paths, Path{p})
	}
}

func (m *Movement) addRays(pos Position, dirs []Direction) {
	for _, d := range dirs {
		if ray := pos.Ray(d); len(ray) > 0 {
			m.Paths = append(m.Paths, ray)
		}
	}
}

// pawnRow is the starting row of the color's pawns.
func pawnRow(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

// lastRow is the promotion row for the color's pawns.
func lastRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}
