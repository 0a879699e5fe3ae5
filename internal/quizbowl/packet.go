package quizbowl

import "strings"

// Packet is the ordered question set read during a game. Each cycle reads
// the tossup at its index and, when present, the bonus at the same index.
type Packet struct {
	Tossups []Tossup `json:"tossups"`
	Bonuses []Bonus  `json:"bonuses,omitempty"`
}

type Tossup struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Bonus struct {
	Leadin string          `json:"leadin"`
	Parts  []BonusQuestion `json:"parts"`
}

type BonusQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Value    int    `json:"value,omitempty"`
}

// Len is the number of cycles a game built on this packet has.
func (p Packet) Len() int {
	return len(p.Tossups)
}

func (p Packet) bonus(index int) (Bonus, bool) {
	if index < 0 || index >= len(p.Bonuses) {
		return Bonus{}, false
	}
	return p.Bonuses[index], true
}

// Words splits the tossup text the same way buzz positions are counted.
func (t Tossup) Words() []string {
	return strings.Fields(t.Question)
}

// PointsAtPosition returns what a buzz at the given word position earns.
// A correct buzz before a power marker earns that marker's value. An
// incorrect buzz before the end of the question earns the neg value.
func (t Tossup) PointsAtPosition(format GameFormat, position int, isCorrect bool) int {
	words := t.Words()
	if !isCorrect {
		if position < len(words)-1 {
			return format.NegValue
		}
		return 0
	}

	for i, marker := range format.PowerMarkers {
		markerPos := indexOfMarker(words, marker)
		if markerPos >= 0 && position < markerPos && i < len(format.PowerValues) {
			return format.PowerValues[i]
		}
	}
	return format.TossupValue
}

func indexOfMarker(words []string, marker string) int {
	for i, w := range words {
		if strings.Contains(w, marker) {
			return i
		}
	}
	return -1
}
