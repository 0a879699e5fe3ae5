package sheets

import (
	"fmt"
	"strconv"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

// SheetType selects the scoresheet template being filled in.
type SheetType string

const (
	TJSheets   SheetType = "tj"
	UCSDSheets SheetType = "ucsd"
)

func ParseSheetType(s string) (SheetType, error) {
	switch SheetType(s) {
	case TJSheets, UCSDSheets:
		return SheetType(s), nil
	case "":
		return TJSheets, nil
	}
	return "", fmt.Errorf("unknown sheet type %q", s)
}

// Buzz is one tossup attempt as it appears on a scoresheet.
type Buzz struct {
	Player   quizbowl.PlayerRef `json:"player"`
	Position int                `json:"position"`
	Points   int                `json:"points"`
}

// CycleRow is one question on a scoresheet.
type CycleRow struct {
	Index      int            `json:"index"`
	ThrownOut  bool           `json:"thrownOut"`
	Buzzes     []Buzz         `json:"buzzes"`
	BonusTeam  string         `json:"bonusTeam,omitempty"`
	BonusParts []int          `json:"bonusParts,omitempty"`
	Tossup     map[string]int `json:"tossup"`
	Bonus      map[string]int `json:"bonus"`
}

// Scoresheet is a read-only view of a game taken for export.
type Scoresheet struct {
	Teams   []string             `json:"teams"`
	Players []quizbowl.Player    `json:"players"`
	Rows    []CycleRow           `json:"rows"`
	Scores  []quizbowl.TeamScore `json:"scores"`

	// Revision is the game revision the view was taken at.
	Revision uint64 `json:"-"`
}

// NewScoresheet captures the playable cycles of g. The caller must hold
// whatever lock guards g.
func NewScoresheet(g *quizbowl.Game) Scoresheet {
	s := Scoresheet{
		Teams:   g.Teams(),
		Players: g.Players(),
		Scores:  g.Scores(),

		Revision: g.Revision(),
	}
	cycles := g.PlayableCycles()
	for i, cs := range g.CycleScores() {
		c := cycles[i]
		row := CycleRow{
			Index:     cs.CycleIndex,
			ThrownOut: cs.ThrownOut,
			Tossup:    cs.Tossup,
			Bonus:     cs.Bonus,
		}
		for _, ta := range c.TossupAnswers() {
			row.Buzzes = append(row.Buzzes, Buzz{
				Player:   ta.Marker.Player,
				Position: ta.Marker.Position,
				Points:   ta.Marker.Points,
			})
		}
		if ba, ok := c.BonusAnswer(); ok && !cs.ThrownOut {
			row.BonusTeam = ba.ReceivingTeam
			for _, p := range ba.CorrectParts {
				row.BonusParts = append(row.BonusParts, p.Index)
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Cells lays the scoresheet out as spreadsheet rows for the given template.
// TJ sheets have a column per player followed by each team's bonus points.
// UCSD sheets have a tossup and a bonus column per team.
func (s Scoresheet) Cells(t SheetType) [][]string {
	switch t {
	case UCSDSheets:
		return s.ucsdCells()
	default:
		return s.tjCells()
	}
}

func (s Scoresheet) tjCells() [][]string {
	header := []string{"#"}
	for _, p := range s.Players {
		header = append(header, p.Name+" ("+p.TeamName+")")
	}
	for _, t := range s.Teams {
		header = append(header, t+" bonus")
	}
	out := [][]string{header}

	for _, row := range s.Rows {
		line := []string{strconv.Itoa(row.Index + 1)}
		for _, p := range s.Players {
			cell := ""
			for _, b := range row.Buzzes {
				if b.Player == p.Ref() && !row.ThrownOut {
					cell = strconv.Itoa(b.Points)
				}
			}
			line = append(line, cell)
		}
		for _, t := range s.Teams {
			line = append(line, strconv.Itoa(row.Bonus[t]))
		}
		out = append(out, line)
	}
	return append(out, s.totalsLine(len(s.Players)))
}

func (s Scoresheet) ucsdCells() [][]string {
	header := []string{"#"}
	for _, t := range s.Teams {
		header = append(header, t+" TU", t+" B")
	}
	out := [][]string{header}

	for _, row := range s.Rows {
		line := []string{strconv.Itoa(row.Index + 1)}
		for _, t := range s.Teams {
			line = append(line, strconv.Itoa(row.Tossup[t]), strconv.Itoa(row.Bonus[t]))
		}
		out = append(out, line)
	}
	return append(out, s.totalsLine(0))
}

func (s Scoresheet) totalsLine(pad int) []string {
	line := []string{"Total"}
	for range pad {
		line = append(line, "")
	}
	for _, ts := range s.Scores {
		line = append(line, ts.Team+": "+strconv.Itoa(ts.Score))
	}
	return line
}
