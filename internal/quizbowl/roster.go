package quizbowl

// ActivePlayers returns who is playing during the cycle: the starters, then
// every join and substitution up to and including that cycle.
func (g *Game) ActivePlayers(cycleIndex int) ([]Player, error) {
	if err := g.checkCycleIndex(cycleIndex); err != nil {
		return nil, err
	}

	active := make(map[PlayerRef]bool)
	for _, p := range g.players {
		if p.IsStarter {
			active[p.Ref()] = true
		}
	}
	for i := 0; i <= cycleIndex; i++ {
		for _, ev := range g.cycles[i].events {
			switch e := ev.(type) {
			case PlayerJoins:
				active[e.InPlayer.Ref()] = true
			case Substitution:
				delete(active, e.OutPlayer)
				active[e.InPlayer] = true
			}
		}
	}

	var out []Player
	for _, p := range g.players {
		if active[p.Ref()] {
			out = append(out, p)
		}
	}
	return out, nil
}

// ValidateNewPlayer checks a player entered by a moderator before it is
// added mid-game. The messages are meant to be shown as-is.
func (g *Game) ValidateNewPlayer(name, team string) error {
	name = normalizeName(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "Player name cannot be empty"}
	}
	if !g.HasTeam(team) {
		return &ValidationError{Field: "teamName", Message: "Team \"" + team + "\" does not exist"}
	}
	if g.HasPlayer(PlayerRef{Name: name, TeamName: team}) {
		return &ValidationError{Field: "name", Message: "Player \"" + name + "\" is already on team \"" + team + "\""}
	}
	return nil
}

// AddNewPlayer validates a new player and records them joining during the
// cycle. The player does not start.
func (g *Game) AddNewPlayer(cycleIndex int, name, team string) (Player, error) {
	if err := g.ValidateNewPlayer(name, team); err != nil {
		return Player{}, err
	}
	p := Player{Name: normalizeName(name), TeamName: team}
	if err := g.AppendEvent(cycleIndex, PlayerJoins{InPlayer: p}); err != nil {
		return Player{}, err
	}
	return p, nil
}
