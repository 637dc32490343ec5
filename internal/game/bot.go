package game

import "math/rand"

var corners = [4]int{0, 2, 6, 8}

// SuggestMove picks a position for p using a fixed priority: complete a
// winning line, block the opponent's winning line, take the center, take a
// random free corner, then the first free cell. Callers must not pass a
// full board; that is a programming error and panics.
func SuggestMove(rnd *rand.Rand, b Board, p Cell) int {
	b = sanitize(b)
	if pos := winningMove(b, p); pos >= 0 {
		return pos
	}
	if pos := winningMove(b, Opponent(p)); pos >= 0 {
		return pos
	}
	if b[4] == Empty {
		return 4
	}
	var free []int
	for _, pos := range corners {
		if b[pos] == Empty {
			free = append(free, pos)
		}
	}
	if len(free) > 0 {
		if rnd == nil {
			return free[0]
		}
		return free[rnd.Intn(len(free))]
	}
	for pos, c := range b {
		if c == Empty {
			return pos
		}
	}
	panic("game: suggest move on a full board")
}

// winningMove returns the position that completes a line for p, or -1.
func winningMove(b Board, p Cell) int {
	for _, line := range winLines {
		mine, empty := 0, -1
		for _, pos := range line {
			switch b[pos] {
			case p:
				mine++
			case Empty:
				empty = pos
			}
		}
		if mine == 2 && empty >= 0 {
			return empty
		}
	}
	return -1
}
