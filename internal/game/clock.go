package game

import "voicechess/pkg/chessrules"

// ClockPair holds whole seconds left per side.
type ClockPair struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func NewClockPair(seconds int) ClockPair {
	return ClockPair{White: seconds, Black: seconds}
}

func (c ClockPair) Get(side chessrules.Side) int {
	if side == chessrules.Black {
		return c.Black
	}
	return c.White
}

func (c *ClockPair) Set(side chessrules.Side, seconds int) {
	if side == chessrules.Black {
		c.Black = seconds
		return
	}
	c.White = seconds
}

func (c *ClockPair) Add(side chessrules.Side, seconds int) {
	c.Set(side, c.Get(side)+seconds)
}
