package cart

import (
	"fmt"
	"strconv"
	"strings"
)

// LineView is a rendered cart line.  Index is the position passed back to
// RemoveItem.
type LineView struct {
	Index    int
	Text     string // "Name x Q"
	Subtotal string // "0.00"
}

// View is everything a front end needs to draw the cart.
type View struct {
	Lines []LineView
	Count int    // sum of quantities
	Total string // "$0.00"
}

// Render projects the current state.  Calling it repeatedly without a
// mutation in between yields equal views.
func (s *Store) Render() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderLocked()
}

func (s *Store) renderLocked() View {
	v := View{Lines: make([]LineView, 0, len(s.lines))}
	for i, l := range s.lines {
		v.Lines = append(v.Lines, LineView{
			Index:    i,
			Text:     fmt.Sprintf("%s x %d", l.Name, l.Quantity),
			Subtotal: FormatCents(l.UnitCents * int64(l.Quantity)),
		})
		v.Count += l.Quantity
	}
	v.Total = "$" + FormatCents(s.totalCents)
	return v
}

// FormatCents renders an amount with two decimals, e.g. 1998 -> "19.98".
func FormatCents(c int64) string {
	sign, u := "", uint64(c)
	if c < 0 {
		sign, u = "-", uint64(-(c+1))+1
	}
	return fmt.Sprintf("%s%d.%02d", sign, u/100, u%100)
}

// ParsePrice reads a displayed price such as "$1,299.50" by dropping every
// character other than digits and dots and parsing the longest numeric
// prefix of what is left.  Text with no number in it yields 0.
func ParsePrice(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	end, dot := 0, false
	for end < len(s) {
		if s[end] == '.' {
			if dot {
				break
			}
			dot = true
		}
		end++
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}
