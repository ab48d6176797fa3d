package board

import "lukechampine.com/frand"

// RandomPosition plays up to plies random moves from an empty board,
// alternating sides and starting with White. Moves that would end the game
// are avoided, so the result is always a position that can still be played.
func RandomPosition(plies int) (*Board, Player) {
	b := New()
	p := White
	for range plies {
		moves := b.PossibleMoves()
		frand.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
		played := false
		for _, c := range moves {
			v, err := b.MakeMove(p, c)
			if err != nil {
				continue
			}
			if v.Decided() {
				if err := b.WithdrawMove(c); err != nil {
					panic(err)
				}
				continue
			}
			played = true
			break
		}
		if !played {
			break
		}
		p = p.Opponent()
	}
	return b, p
}
