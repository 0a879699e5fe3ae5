package quizbowl

// TeamScore is one row of a scoreboard.
type TeamScore struct {
	Team  string `json:"team"`
	Score int    `json:"score"`
}

// CycleScore is what each team earned in one cycle.
type CycleScore struct {
	CycleIndex int            `json:"cycleIndex"`
	ThrownOut  bool           `json:"thrownOut"`
	Tossup     map[string]int `json:"tossup"`
	Bonus      map[string]int `json:"bonus"`
}

// Score folds the playable cycles in order: buzz points as recorded plus
// bonus parts valued by the current format. Thrown-out cycles count nothing.
func (g *Game) Score(team string) int {
	return g.scoreThrough(team, g.playableCount())
}

// Scores returns every team's score in roster order.
func (g *Game) Scores() []TeamScore {
	teams := g.Teams()
	out := make([]TeamScore, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamScore{Team: t, Score: g.Score(t)})
	}
	return out
}

func (g *Game) scoreThrough(team string, n int) int {
	total := 0
	for i := 0; i < n && i < len(g.cycles); i++ {
		total += g.cycleScore(i, team)
	}
	return total
}

func (g *Game) cycleScore(i int, team string) int {
	c := g.cycles[i]
	s := c.TossupScore(team)
	if g.bonusScored(i) {
		s += c.BonusScore(team, g.format)
	}
	return s
}

// bonusScored reports whether cycle i's bonus counts: the cycle reads
// bonuses and the bonus is still backed by its trigger.
func (g *Game) bonusScored(i int) bool {
	if !g.bonusesScored(i) {
		return false
	}
	c := g.cycles[i]
	ba, ok := c.BonusAnswer()
	if !ok {
		return false
	}
	team, answered := c.CorrectTeam()
	if !answered {
		return g.format.AllowBonusWithoutTrigger
	}
	return team == ba.ReceivingTeam
}

// CycleScores breaks the score down per playable cycle.
func (g *Game) CycleScores() []CycleScore {
	teams := g.Teams()
	n := g.playableCount()
	out := make([]CycleScore, 0, n)
	for i := 0; i < n; i++ {
		c := g.cycles[i]
		cs := CycleScore{
			CycleIndex: i,
			ThrownOut:  c.IsThrownOut(),
			Tossup:     make(map[string]int, len(teams)),
			Bonus:      make(map[string]int, len(teams)),
		}
		for _, t := range teams {
			cs.Tossup[t] = c.TossupScore(t)
			if g.bonusScored(i) {
				cs.Bonus[t] = c.BonusScore(t, g.format)
			} else {
				cs.Bonus[t] = 0
			}
		}
		out = append(out, cs)
	}
	return out
}

// PlayableCycles returns the cycles that can be navigated to: regulation,
// plus overtime while the lead is tied, plus any later cycle that already
// holds events.
func (g *Game) PlayableCycles() []*Cycle {
	return append([]*Cycle(nil), g.cycles[:g.playableCount()]...)
}

func (g *Game) playableCount() int {
	n := len(g.cycles)
	count := min(g.format.RegulationTossupCount, n)

	if count < n && g.tiedThrough(count) {
		count = min(n, count+g.format.MinimumOvertimeQuestionCount)
		for count < n && g.tiedThrough(count) {
			count++
		}
	}

	for i := n - 1; i >= count; i-- {
		if !g.cycles[i].IsEmpty() {
			count = i + 1
			break
		}
	}
	return count
}

// tiedThrough reports whether the top score after the first n cycles is
// shared by two or more teams.
func (g *Game) tiedThrough(n int) bool {
	teams := g.Teams()
	if len(teams) < 2 {
		return false
	}
	best, holders := 0, 0
	for i, t := range teams {
		s := g.scoreThrough(t, n)
		switch {
		case i == 0 || s > best:
			best, holders = s, 1
		case s == best:
			holders++
		}
	}
	return holders > 1
}
