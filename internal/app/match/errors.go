package match

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInsufficientEnergy = errors.New("energy_insufficient")
	ErrIllegalMove        = errors.New("illegal_move")
	ErrGameOver           = errors.New("game_over")
)
