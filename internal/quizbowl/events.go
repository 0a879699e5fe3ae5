package quizbowl

// EventKind names an event variant. The names are stable; they appear in
// snapshots and on the wire.
type EventKind string

const (
	KindTossupAnswer     EventKind = "tossupAnswer"
	KindBonusAnswer      EventKind = "bonusAnswer"
	KindTossupProtest    EventKind = "tossupProtest"
	KindBonusProtest     EventKind = "bonusProtest"
	KindSubstitution     EventKind = "substitution"
	KindPlayerJoins      EventKind = "playerJoins"
	KindThrowOutQuestion EventKind = "throwOutQuestion"
)

// EventKinds lists every kind in ledger order.
var EventKinds = []EventKind{
	KindTossupAnswer,
	KindBonusAnswer,
	KindTossupProtest,
	KindBonusProtest,
	KindSubstitution,
	KindPlayerJoins,
	KindThrowOutQuestion,
}

// ParseEventKind checks a kind name received from outside the package.
func ParseEventKind(s string) (EventKind, bool) {
	for _, k := range EventKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Event is one immutable entry of a cycle's ledger. The set of variants is
// closed; only the types in this file implement it.
type Event interface {
	Kind() EventKind
	event()
}

// BuzzMarker records a buzz: who, where in the question, and the points it
// earned when it was recorded.
type BuzzMarker struct {
	Player    PlayerRef `json:"player"`
	Position  int       `json:"position"`
	IsCorrect bool      `json:"isCorrect"`
	Points    int       `json:"points"`
}

type TossupAnswer struct {
	TossupIndex int        `json:"tossupIndex"`
	Marker      BuzzMarker `json:"marker"`
}

// BonusPart is one correctly answered part of a bonus.
type BonusPart struct {
	Index  int `json:"index"`
	Points int `json:"points"`
}

type BonusAnswer struct {
	BonusIndex    int         `json:"bonusIndex"`
	CorrectParts  []BonusPart `json:"correctParts"`
	ReceivingTeam string      `json:"receivingTeam"`
}

type TossupProtest struct {
	QuestionIndex int    `json:"questionIndex"`
	Position      int    `json:"position"`
	Reason        string `json:"reason"`
	Team          string `json:"team"`
}

type BonusProtest struct {
	QuestionIndex int    `json:"questionIndex"`
	PartIndex     int    `json:"partIndex"`
	Reason        string `json:"reason"`
	Team          string `json:"team"`
}

type Substitution struct {
	InPlayer  PlayerRef `json:"inPlayer"`
	OutPlayer PlayerRef `json:"outPlayer"`
}

type PlayerJoins struct {
	InPlayer Player `json:"inPlayer"`
}

func (e PlayerJoins) normalized() PlayerJoins {
	e.InPlayer.Name = normalizeName(e.InPlayer.Name)
	e.InPlayer.IsStarter = false
	return e
}

type ThrowOutQuestion struct {
	QuestionIndex int `json:"questionIndex"`
}

func (TossupAnswer) Kind() EventKind     { return KindTossupAnswer }
func (BonusAnswer) Kind() EventKind      { return KindBonusAnswer }
func (TossupProtest) Kind() EventKind    { return KindTossupProtest }
func (BonusProtest) Kind() EventKind     { return KindBonusProtest }
func (Substitution) Kind() EventKind     { return KindSubstitution }
func (PlayerJoins) Kind() EventKind      { return KindPlayerJoins }
func (ThrowOutQuestion) Kind() EventKind { return KindThrowOutQuestion }

func (TossupAnswer) event()     {}
func (BonusAnswer) event()      {}
func (TossupProtest) event()    {}
func (BonusProtest) event()     {}
func (Substitution) event()     {}
func (PlayerJoins) event()      {}
func (ThrowOutQuestion) event() {}

// Points is the sum of the part points stored on the event.
func (b BonusAnswer) Points() int {
	total := 0
	for _, p := range b.CorrectParts {
		total += p.Points
	}
	return total
}

func (b BonusAnswer) clone() BonusAnswer {
	b.CorrectParts = append([]BonusPart(nil), b.CorrectParts...)
	return b
}
