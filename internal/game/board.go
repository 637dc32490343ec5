package game

import "fmt"

type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

func (c Cell) IsPlayer() bool {
	return c == X || c == O
}

func Opponent(p Cell) Cell {
	if p == X {
		return O
	}
	return X
}

// Board is the 3x3 grid in row-major order, positions 0..8.
type Board [9]Cell

func (b Board) String() string {
	out := make([]byte, 9)
	for i, c := range b {
		out[i] = c.String()[0]
	}
	return string(out)
}

func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != 9 {
		return b, fmt.Errorf("board must be 9 cells, got %d", len(s))
	}
	for i := 0; i < 9; i++ {
		switch s[i] {
		case 'X', 'x':
			b[i] = X
		case 'O', 'o':
			b[i] = O
		case '.', '_', ' ':
			b[i] = Empty
		default:
			return Board{}, fmt.Errorf("board cell %d: unknown mark %q", i, s[i])
		}
	}
	return b, nil
}

func IsLegal(b Board, pos int) bool {
	return pos >= 0 && pos < len(b) && b[pos] == Empty
}

// sanitize clears cell values outside {Empty, X, O}.
func sanitize(b Board) Board {
	for i, c := range b {
		if c > O {
			b[i] = Empty
		}
	}
	return b
}

// balanced reports whether the mark counts could come from alternating play.
func balanced(b Board) bool {
	var x, o int
	for _, c := range b {
		switch c {
		case X:
			x++
		case O:
			o++
		}
	}
	diff := x - o
	return diff >= -1 && diff <= 1
}
