package domain

import (
	"fmt"
	"strings"
)

// Side - disc colour of a participant
type Side string

const (
	SideBlack Side = "BLACK"
	SideWhite Side = "WHITE"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideBlack {
		return SideWhite
	}
	return SideBlack
}

// OpensGame reports whether this side plays the first move. Black always opens.
func (s Side) OpensGame() bool {
	return s == SideBlack
}

// ParseSide accepts "black"/"white" in any case, plus the single letters b/w.
func ParseSide(v string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "BLACK", "B":
		return SideBlack, nil
	case "WHITE", "W":
		return SideWhite, nil
	default:
		return "", fmt.Errorf("unknown side %q", v)
	}
}
