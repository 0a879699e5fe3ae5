package quizbowl

// Game is the aggregation root of a match: the packet being read, the
// format scoring it, the roster, and one Cycle per packet question.
//
// Scores, the active roster and navigability are never stored; every query
// recomputes them from the cycle ledgers. A Game is not safe for concurrent
// use.
type Game struct {
	packet       Packet
	format       GameFormat
	players      []Player
	cycles       []*Cycle
	cycleIndex   int
	updateNeeded bool
	revision     uint64
}

// NewGame returns a game with an empty packet and the unspecified format.
func NewGame() *Game {
	return &Game{format: UndefinedFormat.clone()}
}

func (g *Game) Packet() Packet {
	p := Packet{
		Tossups: append([]Tossup(nil), g.packet.Tossups...),
		Bonuses: make([]Bonus, 0, len(g.packet.Bonuses)),
	}
	for _, b := range g.packet.Bonuses {
		b.Parts = append([]BonusQuestion(nil), b.Parts...)
		p.Bonuses = append(p.Bonuses, b)
	}
	if len(p.Bonuses) == 0 {
		p.Bonuses = nil
	}
	return p
}

func (g *Game) Format() GameFormat { return g.format.clone() }

func (g *Game) Players() []Player {
	return append([]Player(nil), g.players...)
}

// Cycles returns every cycle, including unplayed overtime. Mutate cycles
// through the Game so roster side effects and the update flag stay right.
func (g *Game) Cycles() []*Cycle {
	return append([]*Cycle(nil), g.cycles...)
}

func (g *Game) Cycle(index int) (*Cycle, error) {
	if err := g.checkCycleIndex(index); err != nil {
		return nil, err
	}
	return g.cycles[index], nil
}

// LoadPacket replaces the packet and resets the ledger to one empty cycle per
// question. All prior events are discarded; there is no way back.
func (g *Game) LoadPacket(p Packet) {
	g.packet = Packet{
		Tossups: append([]Tossup(nil), p.Tossups...),
		Bonuses: append([]Bonus(nil), p.Bonuses...),
	}
	g.cycles = make([]*Cycle, p.Len())
	for i := range g.cycles {
		g.cycles[i] = NewCycle(i)
	}
	g.cycleIndex = 0
	g.changed()
}

// SetGameFormat swaps the format. Recorded events are not re-validated;
// tossup points stay as recorded while bonus parts are valued by the new
// format from now on.
func (g *Game) SetGameFormat(f GameFormat) {
	g.format = f.clone()
	g.changed()
}

// AddPlayers appends players to the roster, skipping (name, team) pairs that
// are already present.
func (g *Game) AddPlayers(players ...Player) {
	g.players = dedupePlayers(g.players, players)
	g.changed()
}

// SetPlayers replaces the roster.
func (g *Game) SetPlayers(players []Player) {
	g.players = dedupePlayers(nil, players)
	g.changed()
}

func (g *Game) HasPlayer(p PlayerRef) bool {
	for _, existing := range g.players {
		if existing.Ref() == p {
			return true
		}
	}
	return false
}

func (g *Game) HasTeam(team string) bool {
	for _, p := range g.players {
		if p.TeamName == team {
			return true
		}
	}
	return false
}

// Teams returns team names in the order they first appear on the roster.
func (g *Game) Teams() []string {
	var teams []string
	seen := make(map[string]struct{})
	for _, p := range g.players {
		if _, ok := seen[p.TeamName]; ok {
			continue
		}
		seen[p.TeamName] = struct{}{}
		teams = append(teams, p.TeamName)
	}
	return teams
}

func (g *Game) rulesFor(cycleIndex int) CycleRules {
	partCount := g.format.BonusPartCount()
	if b, ok := g.packet.bonus(cycleIndex); ok && len(b.Parts) > 0 {
		partCount = len(b.Parts)
	}
	return CycleRules{
		Roster:                   g,
		AllowBonusWithoutTrigger: g.format.AllowBonusWithoutTrigger,
		BonusesAllowed:           g.bonusesScored(cycleIndex),
		BonusPartCount:           partCount,
	}
}

func (g *Game) bonusesScored(cycleIndex int) bool {
	return !g.format.IsOvertime(cycleIndex) || g.format.OvertimeIncludesBonuses
}

func (g *Game) checkCycleIndex(index int) error {
	if index < 0 || index >= len(g.cycles) {
		return &OutOfRangeError{What: "cycle", Index: index, Len: len(g.cycles)}
	}
	return nil
}

// AppendEvent validates ev against the cycle and the roster and appends it.
// Either the whole event is recorded or nothing changes.
func (g *Game) AppendEvent(cycleIndex int, ev Event) error {
	if err := g.checkCycleIndex(cycleIndex); err != nil {
		return err
	}
	c := g.cycles[cycleIndex]
	rules := g.rulesFor(cycleIndex)

	var err error
	switch e := ev.(type) {
	case TossupAnswer:
		err = c.AddTossupAnswer(e, rules)
	case BonusAnswer:
		err = c.AddBonusAnswer(e, rules)
	case TossupProtest:
		err = c.AddTossupProtest(e, rules)
	case BonusProtest:
		err = c.AddBonusProtest(e, rules)
	case Substitution:
		err = c.AddSubstitution(e, rules)
	case PlayerJoins:
		e = e.normalized()
		if err = c.AddPlayerJoins(e, rules); err == nil {
			g.players = append(g.players, e.InPlayer)
		}
	case ThrowOutQuestion:
		err = c.AddThrowOutQuestion(e, rules)
	default:
		err = &InvalidEventError{Reason: "unknown event type"}
	}
	if err != nil {
		return err
	}
	g.changed()
	return nil
}

// RemoveLastEvent undoes the newest event of kind in the cycle. Undoing a
// join also drops the player from the roster unless another event still
// names them.
func (g *Game) RemoveLastEvent(cycleIndex int, kind EventKind) (Event, error) {
	if err := g.checkCycleIndex(cycleIndex); err != nil {
		return nil, err
	}
	ev, ok := g.cycles[cycleIndex].RemoveLastEventOfKind(kind)
	if !ok {
		return nil, nil
	}
	if joins, isJoin := ev.(PlayerJoins); isJoin && !g.referenced(joins.InPlayer.Ref()) {
		g.removePlayer(joins.InPlayer.Ref())
	}
	g.changed()
	return ev, nil
}

// ThrowOutCycle rules the cycle's question out: its tossup and bonus
// answers are discarded and a ThrowOutQuestion is recorded.
func (g *Game) ThrowOutCycle(cycleIndex int) error {
	if err := g.checkCycleIndex(cycleIndex); err != nil {
		return err
	}
	c := g.cycles[cycleIndex]
	if c.IsThrownOut() {
		return invalid(KindThrowOutQuestion, "question already thrown out")
	}
	c.removeKind(KindTossupAnswer)
	c.removeKind(KindBonusAnswer)
	return g.AppendEvent(cycleIndex, ThrowOutQuestion{QuestionIndex: c.questionIndex})
}

func (g *Game) referenced(p PlayerRef) bool {
	for _, c := range g.cycles {
		if c.references(p) {
			return true
		}
	}
	return false
}

func (g *Game) removePlayer(p PlayerRef) {
	kept := g.players[:0]
	for _, existing := range g.players {
		if existing.Ref() != p {
			kept = append(kept, existing)
		}
	}
	g.players = kept
}

// BuzzPoints returns what a buzz at position in the cycle's tossup earns
// under the current format. Callers freeze the result into the BuzzMarker.
func (g *Game) BuzzPoints(cycleIndex, position int, isCorrect bool) (int, error) {
	if err := g.checkCycleIndex(cycleIndex); err != nil {
		return 0, err
	}
	return g.packet.Tossups[cycleIndex].PointsAtPosition(g.format, position, isCorrect), nil
}

// IsUpdateNeeded reports whether the ledger changed since the last
// successful export.
func (g *Game) IsUpdateNeeded() bool { return g.updateNeeded }

// MarkUpdateComplete records that the current ledger has been exported.
func (g *Game) MarkUpdateComplete() { g.updateNeeded = false }

// Revision counts changes to the ledger. It is not persisted.
func (g *Game) Revision() uint64 { return g.revision }

// MarkExported clears the update flag when nothing changed since revision
// was read. It reports whether the flag was cleared.
func (g *Game) MarkExported(revision uint64) bool {
	if revision != g.revision {
		return false
	}
	g.updateNeeded = false
	return true
}

func (g *Game) changed() {
	g.updateNeeded = true
	g.revision++
}

func (g *Game) CycleIndex() int { return g.cycleIndex }

func (g *Game) SetCycleIndex(index int) error {
	if err := g.checkCycleIndex(index); err != nil {
		return err
	}
	g.cycleIndex = index
	return nil
}

// NextCycle advances the cursor unless it is on the last playable cycle.
func (g *Game) NextCycle() {
	if g.cycleIndex+1 < g.playableCount() {
		g.cycleIndex++
	}
}

func (g *Game) PreviousCycle() {
	if g.cycleIndex > 0 {
		g.cycleIndex--
	}
}
