// Command qbctl works with quiz bowl files offline: it checks and
// normalizes packets, lists game formats, and scores exported games.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/playperu/quizbowl/internal/packet"
	"github.com/playperu/quizbowl/internal/quizbowl"
	"github.com/playperu/quizbowl/internal/sheets"
)

const (
	outputFlag = "output"
	typeFlag   = "type"
	stdoutName = "-"
)

var version = "v0.1.0-dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "qbctl",
		Usage:     "Check packets and score quiz bowl games from the command line",
		Version:   version,
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:  "packet",
				Usage: "Work with question packets",
				Subcommands: []*cli.Command{
					{
						Name:      "check",
						Usage:     "Validate a YAML or JSON packet",
						ArgsUsage: "FILE",
						Action:    checkPacket,
					},
					{
						Name:      "convert",
						Usage:     "Rewrite a packet as normalized YAML",
						ArgsUsage: "FILE",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    outputFlag,
								Aliases: []string{"o"},
								Usage:   "Where to write the packet, - for stdout",
								Value:   stdoutName,
							},
						},
						Action: convertPacket,
					},
				},
			},
			{
				Name:  "format",
				Usage: "Inspect game formats",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "Print every preset format as YAML",
						Action: listFormats,
					},
				},
			},
			{
				Name:  "game",
				Usage: "Read games downloaded from the dump endpoint",
				Subcommands: []*cli.Command{
					{
						Name:      "score",
						Usage:     "Print team scores and the per-cycle breakdown",
						ArgsUsage: "FILE",
						Action:    scoreGame,
					},
					{
						Name:      "sheet",
						Usage:     "Print the scoresheet cells as tab-separated rows",
						ArgsUsage: "FILE",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  typeFlag,
								Usage: `Scoresheet layout, "tj" or "ucsd"`,
								Value: string(sheets.TJSheets),
							},
						},
						Action: printSheet,
					},
				},
			},
		},
	}
}

func fileArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.New("expected exactly one FILE argument")
	}
	return c.Args().First(), nil
}

func checkPacket(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	p, err := packet.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s: %d tossups, %d bonuses\n", path, len(p.Tossups), len(p.Bonuses))
	return nil
}

func convertPacket(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	p, err := packet.Load(path)
	if err != nil {
		return err
	}

	out := c.String(outputFlag)
	if out == stdoutName {
		return packet.Write(c.App.Writer, p)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := packet.Write(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type namedFormat struct {
	Name   string              `yaml:"name"`
	Format quizbowl.GameFormat `yaml:"format"`
}

func listFormats(c *cli.Context) error {
	var formats []namedFormat
	for _, name := range quizbowl.FormatNames() {
		f, err := quizbowl.FormatByName(name)
		if err != nil {
			return err
		}
		formats = append(formats, namedFormat{Name: name, Format: f})
	}

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(formats); err != nil {
		return fmt.Errorf("encoding formats: %w", err)
	}
	return enc.Close()
}

// loadGame reads either a dump download, which wraps the snapshot in a
// "game" field, or a bare snapshot.
func loadGame(path string) (*quizbowl.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var dump struct {
		Game *quizbowl.Snapshot `json:"game"`
	}
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if dump.Game == nil {
		var s quizbowl.Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		dump.Game = &s
	}
	return quizbowl.FromSnapshot(*dump.Game)
}

func scoreGame(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	g, err := loadGame(path)
	if err != nil {
		return err
	}

	teams := g.Teams()
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "cycle\t%s\n", strings.Join(teams, "\t"))
	for _, cs := range g.CycleScores() {
		row := make([]string, 0, len(teams))
		for _, t := range teams {
			row = append(row, fmt.Sprint(cs.Tossup[t]+cs.Bonus[t]))
		}
		label := fmt.Sprint(cs.CycleIndex + 1)
		if cs.ThrownOut {
			label += " (thrown out)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, strings.Join(row, "\t"))
	}
	totals := make([]string, 0, len(teams))
	for _, s := range g.Scores() {
		totals = append(totals, fmt.Sprint(s.Score))
	}
	fmt.Fprintf(tw, "total\t%s\n", strings.Join(totals, "\t"))
	return tw.Flush()
}

func printSheet(c *cli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return err
	}
	t, err := sheets.ParseSheetType(c.String(typeFlag))
	if err != nil {
		return err
	}
	g, err := loadGame(path)
	if err != nil {
		return err
	}
	for _, row := range sheets.NewScoresheet(g).Cells(t) {
		fmt.Fprintln(c.App.Writer, strings.Join(row, "\t"))
	}
	return nil
}
