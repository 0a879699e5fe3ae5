package server

import (
	"context"
	"log/slog"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

func demoPacket() quizbowl.Packet {
	bonus := func(leadin string, parts ...string) quizbowl.Bonus {
		b := quizbowl.Bonus{Leadin: leadin}
		for i := 0; i+1 < len(parts); i += 2 {
			b.Parts = append(b.Parts, quizbowl.BonusQuestion{Question: parts[i], Answer: parts[i+1], Value: 10})
		}
		return b
	}
	return quizbowl.Packet{
		Tossups: []quizbowl.Tossup{
			{Question: "This city hosts the Huaca Pucllana and the Plaza Mayor. For (*) 10 points, name this capital of Peru.", Answer: "Lima"},
			{Question: "This element with atomic number 79 was used by the Inca to represent the sun. For (*) 10 points, name this metal.", Answer: "Gold"},
			{Question: "This author of The Time of the Hero won the 2010 Nobel Prize. For (*) 10 points, name this Peruvian novelist.", Answer: "Mario Vargas Llosa"},
			{Question: "This lake on the border of Peru and Bolivia is the highest navigable lake. For (*) 10 points, name this lake.", Answer: "Lake Titicaca"},
		},
		Bonuses: []quizbowl.Bonus{
			bonus("Name these Peruvian dishes.", "Raw fish cured in citrus.", "Ceviche", "Stir-fried beef with onions and tomatoes.", "Lomo saltado", "Skewered grilled heart.", "Anticuchos"),
			bonus("Name these Inca sites.", "This citadel was rediscovered in 1911.", "Machu Picchu", "This fortress overlooks Cusco.", "Sacsayhuaman", "This valley runs along the Urubamba River.", "Sacred Valley"),
			bonus("Name these South American rivers.", "The longest river on the continent.", "Amazon", "Its source is in the Andes of Peru.", "Maranon", "It flows past Iquitos after joining the Maranon.", "Ucayali"),
			bonus("Name these Andean animals.", "This camelid is prized for wool.", "Alpaca", "Its wild relative.", "Vicuna", "This large vulture.", "Andean condor"),
		},
	}
}

// SeedDemo creates a demo game when the store holds none. It does
// nothing when games already exist.
func SeedDemo(ctx context.Context, logger *slog.Logger, games *Registry, formatName string) error {
	existing, err := games.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	format, err := quizbowl.FormatByName(formatName)
	if err != nil {
		return err
	}

	g := quizbowl.NewGame()
	g.SetGameFormat(format)
	g.LoadPacket(demoPacket())
	g.SetPlayers([]quizbowl.Player{
		{Name: "Alice", TeamName: "Lima", IsStarter: true},
		{Name: "Bruno", TeamName: "Lima", IsStarter: true},
		{Name: "Carmen", TeamName: "Cusco", IsStarter: true},
		{Name: "Diego", TeamName: "Cusco", IsStarter: true},
	})

	id, err := games.Create(ctx, "Demo game", "", g)
	if err != nil {
		return err
	}

	logger.Info("demo game created", "game_id", id)
	return nil
}
