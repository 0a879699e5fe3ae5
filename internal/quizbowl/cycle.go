package quizbowl

// CycleRules is what a cycle needs from its game to validate an event.
type CycleRules struct {
	Roster                   Roster
	AllowBonusWithoutTrigger bool
	// BonusesAllowed is false for overtime cycles in formats that skip
	// bonuses in overtime.
	BonusesAllowed bool
	BonusPartCount int
}

// Cycle is the ledger of one question: the tossup read at QuestionIndex and
// the bonus that may follow it. Events are kept in append order and never
// edited; every query is computed from them on demand.
type Cycle struct {
	questionIndex int
	events        []Event
}

func NewCycle(questionIndex int) *Cycle {
	return &Cycle{questionIndex: questionIndex}
}

func (c *Cycle) QuestionIndex() int { return c.questionIndex }

// Events returns the ledger in append order.
func (c *Cycle) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Cycle) IsEmpty() bool { return len(c.events) == 0 }

// AddTossupAnswer appends a buzz. Nothing can be appended after a correct
// buzz; incorrect buzzes may repeat.
func (c *Cycle) AddTossupAnswer(ev TossupAnswer, rules CycleRules) error {
	if err := c.validateTossupAnswer(ev, rules); err != nil {
		return err
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *Cycle) validateTossupAnswer(ev TossupAnswer, rules CycleRules) error {
	if ev.TossupIndex != c.questionIndex {
		return invalid(ev.Kind(), "tossup index %d does not match cycle question %d", ev.TossupIndex, c.questionIndex)
	}
	if c.IsThrownOut() {
		return invalid(ev.Kind(), "question was thrown out")
	}
	if c.IsAnswered() {
		return invalid(ev.Kind(), "tossup already answered correctly")
	}
	if ev.Marker.Position < 0 {
		return invalid(ev.Kind(), "buzz position must not be negative")
	}
	if !rules.Roster.HasPlayer(ev.Marker.Player) {
		return invalid(ev.Kind(), "player %s is not on the roster", ev.Marker.Player)
	}
	return nil
}

// AddBonusAnswer records the bonus result. A second call replaces the first;
// a cycle has one bonus attempt.
func (c *Cycle) AddBonusAnswer(ev BonusAnswer, rules CycleRules) error {
	if err := c.validateBonusAnswer(ev, rules); err != nil {
		return err
	}
	c.removeKind(KindBonusAnswer)
	c.events = append(c.events, ev.clone())
	return nil
}

func (c *Cycle) validateBonusAnswer(ev BonusAnswer, rules CycleRules) error {
	if ev.BonusIndex != c.questionIndex {
		return invalid(ev.Kind(), "bonus index %d does not match cycle question %d", ev.BonusIndex, c.questionIndex)
	}
	if c.IsThrownOut() {
		return invalid(ev.Kind(), "question was thrown out")
	}
	if !rules.BonusesAllowed {
		return invalid(ev.Kind(), "bonuses are not read in this cycle")
	}

	if team, ok := c.CorrectTeam(); ok {
		if ev.ReceivingTeam != team {
			return invalid(ev.Kind(), "bonus belongs to %q, not %q", team, ev.ReceivingTeam)
		}
	} else if !rules.AllowBonusWithoutTrigger {
		return invalid(ev.Kind(), "no triggering correct answer")
	} else if !rules.Roster.HasTeam(ev.ReceivingTeam) {
		return invalid(ev.Kind(), "unknown team %q", ev.ReceivingTeam)
	}

	seen := make(map[int]struct{}, len(ev.CorrectParts))
	for _, p := range ev.CorrectParts {
		if p.Index < 0 || p.Index >= rules.BonusPartCount {
			return invalid(ev.Kind(), "bonus part %d out of range [0, %d)", p.Index, rules.BonusPartCount)
		}
		if _, dup := seen[p.Index]; dup {
			return invalid(ev.Kind(), "bonus part %d listed twice", p.Index)
		}
		if p.Points <= 0 {
			return invalid(ev.Kind(), "bonus part %d points must be positive", p.Index)
		}
		seen[p.Index] = struct{}{}
	}
	return nil
}

func (c *Cycle) AddTossupProtest(ev TossupProtest, rules CycleRules) error {
	if ev.QuestionIndex != c.questionIndex {
		return invalid(ev.Kind(), "question index %d does not match cycle question %d", ev.QuestionIndex, c.questionIndex)
	}
	if ev.Position < 0 {
		return invalid(ev.Kind(), "protest position must not be negative")
	}
	if !rules.Roster.HasTeam(ev.Team) {
		return invalid(ev.Kind(), "unknown team %q", ev.Team)
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *Cycle) AddBonusProtest(ev BonusProtest, rules CycleRules) error {
	if ev.QuestionIndex != c.questionIndex {
		return invalid(ev.Kind(), "question index %d does not match cycle question %d", ev.QuestionIndex, c.questionIndex)
	}
	if ev.PartIndex < 0 || ev.PartIndex >= rules.BonusPartCount {
		return invalid(ev.Kind(), "bonus part %d out of range [0, %d)", ev.PartIndex, rules.BonusPartCount)
	}
	if !rules.Roster.HasTeam(ev.Team) {
		return invalid(ev.Kind(), "unknown team %q", ev.Team)
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *Cycle) AddSubstitution(ev Substitution, rules CycleRules) error {
	if err := validateSubstitution(ev, rules); err != nil {
		return err
	}
	c.events = append(c.events, ev)
	return nil
}

func validateSubstitution(ev Substitution, rules CycleRules) error {
	if ev.InPlayer == ev.OutPlayer {
		return invalid(ev.Kind(), "a player cannot substitute for themselves")
	}
	if ev.InPlayer.TeamName != ev.OutPlayer.TeamName {
		return invalid(ev.Kind(), "players %s and %s are on different teams", ev.InPlayer, ev.OutPlayer)
	}
	if !rules.Roster.HasPlayer(ev.InPlayer) {
		return invalid(ev.Kind(), "player %s is not on the roster", ev.InPlayer)
	}
	if !rules.Roster.HasPlayer(ev.OutPlayer) {
		return invalid(ev.Kind(), "player %s is not on the roster", ev.OutPlayer)
	}
	return nil
}

// AddPlayerJoins records a new player. The caller adds the player to its
// roster once this succeeds. A joining player never counts as a starter.
func (c *Cycle) AddPlayerJoins(ev PlayerJoins, rules CycleRules) error {
	ev = ev.normalized()
	if err := validatePlayerJoins(ev, rules); err != nil {
		return err
	}
	c.events = append(c.events, ev)
	return nil
}

func validatePlayerJoins(ev PlayerJoins, rules CycleRules) error {
	if ev.InPlayer.Name == "" {
		return invalid(ev.Kind(), "player name is empty")
	}
	if !rules.Roster.HasTeam(ev.InPlayer.TeamName) {
		return invalid(ev.Kind(), "unknown team %q", ev.InPlayer.TeamName)
	}
	if rules.Roster.HasPlayer(ev.InPlayer.Ref()) {
		return invalid(ev.Kind(), "player %s is already on the roster", ev.InPlayer.Ref())
	}
	return nil
}

// AddThrowOutQuestion excludes the cycle from scoring. It cannot coexist
// with a tossup or bonus answer.
func (c *Cycle) AddThrowOutQuestion(ev ThrowOutQuestion, _ CycleRules) error {
	if ev.QuestionIndex != c.questionIndex {
		return invalid(ev.Kind(), "question index %d does not match cycle question %d", ev.QuestionIndex, c.questionIndex)
	}
	if c.IsThrownOut() {
		return invalid(ev.Kind(), "question already thrown out")
	}
	if c.hasAnswers() {
		return invalid(ev.Kind(), "cycle already has answers")
	}
	c.events = append(c.events, ev)
	return nil
}

// RemoveLastEventOfKind pops the newest event of kind. It is the undo
// primitive and does nothing on an empty ledger.
func (c *Cycle) RemoveLastEventOfKind(kind EventKind) (Event, bool) {
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Kind() == kind {
			ev := c.events[i]
			c.events = append(c.events[:i], c.events[i+1:]...)
			return ev, true
		}
	}
	return nil, false
}

func (c *Cycle) removeKind(kind EventKind) {
	kept := c.events[:0]
	for _, ev := range c.events {
		if ev.Kind() != kind {
			kept = append(kept, ev)
		}
	}
	c.events = kept
}

func (c *Cycle) hasAnswers() bool {
	for _, ev := range c.events {
		switch ev.(type) {
		case TossupAnswer, BonusAnswer:
			return true
		}
	}
	return false
}

func (c *Cycle) TossupAnswers() []TossupAnswer {
	var out []TossupAnswer
	for _, ev := range c.events {
		if ta, ok := ev.(TossupAnswer); ok {
			out = append(out, ta)
		}
	}
	return out
}

func (c *Cycle) BonusAnswer() (BonusAnswer, bool) {
	for _, ev := range c.events {
		if ba, ok := ev.(BonusAnswer); ok {
			return ba.clone(), true
		}
	}
	return BonusAnswer{}, false
}

func (c *Cycle) TossupProtests() []TossupProtest {
	var out []TossupProtest
	for _, ev := range c.events {
		if p, ok := ev.(TossupProtest); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *Cycle) BonusProtests() []BonusProtest {
	var out []BonusProtest
	for _, ev := range c.events {
		if p, ok := ev.(BonusProtest); ok {
			out = append(out, p)
		}
	}
	return out
}

func (c *Cycle) Substitutions() []Substitution {
	var out []Substitution
	for _, ev := range c.events {
		if s, ok := ev.(Substitution); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Cycle) PlayerJoins() []PlayerJoins {
	var out []PlayerJoins
	for _, ev := range c.events {
		if j, ok := ev.(PlayerJoins); ok {
			out = append(out, j)
		}
	}
	return out
}

func (c *Cycle) IsThrownOut() bool {
	for _, ev := range c.events {
		if _, ok := ev.(ThrowOutQuestion); ok {
			return true
		}
	}
	return false
}

// CorrectBuzz returns the buzz that answered the tossup, if any.
func (c *Cycle) CorrectBuzz() (TossupAnswer, bool) {
	for _, ev := range c.events {
		if ta, ok := ev.(TossupAnswer); ok && ta.Marker.IsCorrect {
			return ta, true
		}
	}
	return TossupAnswer{}, false
}

func (c *Cycle) IsAnswered() bool {
	_, ok := c.CorrectBuzz()
	return ok
}

func (c *Cycle) CorrectTeam() (string, bool) {
	ta, ok := c.CorrectBuzz()
	if !ok {
		return "", false
	}
	return ta.Marker.Player.TeamName, true
}

// TossupScore sums the frozen buzz points of team's players.
func (c *Cycle) TossupScore(team string) int {
	if c.IsThrownOut() {
		return 0
	}
	total := 0
	for _, ta := range c.TossupAnswers() {
		if ta.Marker.Player.TeamName == team {
			total += ta.Marker.Points
		}
	}
	return total
}

// BonusScore sums team's correct bonus parts, valued by format.
func (c *Cycle) BonusScore(team string, format GameFormat) int {
	if c.IsThrownOut() {
		return 0
	}
	ba, ok := c.BonusAnswer()
	if !ok || ba.ReceivingTeam != team {
		return 0
	}
	total := 0
	for _, p := range ba.CorrectParts {
		total += format.partPoints(p)
	}
	return total
}

// references reports whether any event in the cycle names the player.
func (c *Cycle) references(p PlayerRef) bool {
	for _, ev := range c.events {
		switch e := ev.(type) {
		case TossupAnswer:
			if e.Marker.Player == p {
				return true
			}
		case Substitution:
			if e.InPlayer == p || e.OutPlayer == p {
				return true
			}
		case PlayerJoins:
			if e.InPlayer.Ref() == p {
				return true
			}
		}
	}
	return false
}
