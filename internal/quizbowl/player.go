package quizbowl

import "strings"

// Player is a roster entry. Name and TeamName together identify a player;
// two teams may each have a player with the same name.
type Player struct {
	Name      string `json:"name"`
	TeamName  string `json:"teamName"`
	IsStarter bool   `json:"isStarter"`
}

// PlayerRef identifies a roster entry inside an event.
type PlayerRef struct {
	Name     string `json:"name"`
	TeamName string `json:"teamName"`
}

func (p Player) Ref() PlayerRef {
	return PlayerRef{Name: p.Name, TeamName: p.TeamName}
}

func (r PlayerRef) String() string {
	return r.Name + " (" + r.TeamName + ")"
}

// Roster answers membership questions for cycle validation.
type Roster interface {
	HasPlayer(p PlayerRef) bool
	HasTeam(team string) bool
}

// dedupePlayers keeps the first occurrence of each (name, team) pair.
func dedupePlayers(existing, incoming []Player) []Player {
	seen := make(map[PlayerRef]struct{}, len(existing)+len(incoming))
	out := make([]Player, 0, len(existing)+len(incoming))
	for _, list := range [][]Player{existing, incoming} {
		for _, p := range list {
			if _, ok := seen[p.Ref()]; ok {
				continue
			}
			seen[p.Ref()] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func normalizeName(s string) string {
	return strings.TrimSpace(s)
}
