// Package team defines the organizational entity used for both the tracked
// player's own teams and opponent sides. There is deliberately no type
// discriminator: a team created as an opponent can later be a player's team.
package team

import "strings"

// DefaultColor is the fallback when a stored color cannot be parsed.
const DefaultColor = "#1565C0"

// Team is an organizational entity.
type Team struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	League string `json:"league"`
	Season string `json:"season"`
}

// ColorOrDefault returns the stored color when it is a well-formed hex value
// and DefaultColor otherwise. It never fails on garbage input.
func (t Team) ColorOrDefault() string {
	c := strings.TrimSpace(t.Color)
	if !strings.HasPrefix(c, "#") {
		return DefaultColor
	}
	digits := c[1:]
	if len(digits) != 3 && len(digits) != 6 && len(digits) != 8 {
		return DefaultColor
	}
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return DefaultColor
		}
	}
	return c
}
