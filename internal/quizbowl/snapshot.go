package quizbowl

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of a Game. Struct tags double as CBOR
// field names.
type Snapshot struct {
	Packet       Packet          `json:"packet"`
	Format       GameFormat      `json:"format"`
	Players      []Player        `json:"players"`
	CycleIndex   int             `json:"cycleIndex"`
	UpdateNeeded bool            `json:"updateNeeded"`
	Cycles       []CycleSnapshot `json:"cycles"`
}

type CycleSnapshot struct {
	Events []EventRecord `json:"events"`
}

// EventRecord is the tagged wire form of an Event: Type names the variant
// and exactly the matching field is set.
type EventRecord struct {
	Type             EventKind         `json:"type"`
	TossupAnswer     *TossupAnswer     `json:"tossupAnswer,omitempty"`
	BonusAnswer      *BonusAnswer      `json:"bonusAnswer,omitempty"`
	TossupProtest    *TossupProtest    `json:"tossupProtest,omitempty"`
	BonusProtest     *BonusProtest     `json:"bonusProtest,omitempty"`
	Substitution     *Substitution     `json:"substitution,omitempty"`
	PlayerJoins      *PlayerJoins      `json:"playerJoins,omitempty"`
	ThrowOutQuestion *ThrowOutQuestion `json:"throwOutQuestion,omitempty"`
}

// RecordOf wraps ev in its wire form.
func RecordOf(ev Event) EventRecord {
	r := EventRecord{Type: ev.Kind()}
	switch e := ev.(type) {
	case TossupAnswer:
		r.TossupAnswer = &e
	case BonusAnswer:
		e = e.clone()
		r.BonusAnswer = &e
	case TossupProtest:
		r.TossupProtest = &e
	case BonusProtest:
		r.BonusProtest = &e
	case Substitution:
		r.Substitution = &e
	case PlayerJoins:
		r.PlayerJoins = &e
	case ThrowOutQuestion:
		r.ThrowOutQuestion = &e
	}
	return r
}

// Event unwraps the record, rejecting a tag without its payload.
func (r EventRecord) Event() (Event, error) {
	var ev Event
	switch r.Type {
	case KindTossupAnswer:
		if r.TossupAnswer != nil {
			ev = *r.TossupAnswer
		}
	case KindBonusAnswer:
		if r.BonusAnswer != nil {
			ev = r.BonusAnswer.clone()
		}
	case KindTossupProtest:
		if r.TossupProtest != nil {
			ev = *r.TossupProtest
		}
	case KindBonusProtest:
		if r.BonusProtest != nil {
			ev = *r.BonusProtest
		}
	case KindSubstitution:
		if r.Substitution != nil {
			ev = *r.Substitution
		}
	case KindPlayerJoins:
		if r.PlayerJoins != nil {
			ev = *r.PlayerJoins
		}
	case KindThrowOutQuestion:
		if r.ThrowOutQuestion != nil {
			ev = *r.ThrowOutQuestion
		}
	default:
		return nil, &InvalidEventError{Reason: fmt.Sprintf("unknown event type %q", r.Type)}
	}
	if ev == nil {
		return nil, &InvalidEventError{Kind: r.Type, Reason: "missing event body"}
	}
	return ev, nil
}

// Snapshot captures the full ledger.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Packet:       g.Packet(),
		Format:       g.Format(),
		Players:      g.Players(),
		CycleIndex:   g.cycleIndex,
		UpdateNeeded: g.updateNeeded,
		Cycles:       make([]CycleSnapshot, len(g.cycles)),
	}
	for i, c := range g.cycles {
		records := make([]EventRecord, 0, len(c.events))
		for _, ev := range c.events {
			records = append(records, RecordOf(ev))
		}
		s.Cycles[i] = CycleSnapshot{Events: records}
	}
	return s
}

// FromSnapshot rebuilds a game. Events are restored exactly as recorded and
// not re-validated, since the format may have changed after they were
// appended.
func FromSnapshot(s Snapshot) (*Game, error) {
	if len(s.Cycles) != s.Packet.Len() {
		return nil, fmt.Errorf("snapshot has %d cycles for a %d question packet", len(s.Cycles), s.Packet.Len())
	}
	if (len(s.Cycles) == 0 && s.CycleIndex != 0) ||
		(len(s.Cycles) > 0 && (s.CycleIndex < 0 || s.CycleIndex >= len(s.Cycles))) {
		return nil, &OutOfRangeError{What: "cycle", Index: s.CycleIndex, Len: len(s.Cycles)}
	}

	g := &Game{
		format:       s.Format.clone(),
		players:      append([]Player(nil), s.Players...),
		cycleIndex:   s.CycleIndex,
		updateNeeded: s.UpdateNeeded,
	}
	g.packet = Packet{
		Tossups: append([]Tossup(nil), s.Packet.Tossups...),
		Bonuses: append([]Bonus(nil), s.Packet.Bonuses...),
	}
	g.cycles = make([]*Cycle, len(s.Cycles))
	for i, cs := range s.Cycles {
		c := NewCycle(i)
		for j, rec := range cs.Events {
			ev, err := rec.Event()
			if err != nil {
				return nil, fmt.Errorf("cycle %d event %d: %w", i, j, err)
			}
			c.events = append(c.events, ev)
		}
		g.cycles[i] = c
	}
	return g, nil
}

func (g *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored, err := FromSnapshot(s)
	if err != nil {
		return err
	}
	*g = *restored
	return nil
}
