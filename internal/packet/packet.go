// Package packet reads question packets from YAML files. JSON packets are
// accepted too since YAML is a superset of JSON.
package packet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playperu/quizbowl/internal/quizbowl"
)

type document struct {
	Name    string      `yaml:"name,omitempty"`
	Tossups []tossupDoc `yaml:"tossups"`
	Bonuses []bonusDoc  `yaml:"bonuses,omitempty"`
}

type tossupDoc struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type bonusDoc struct {
	Leadin string    `yaml:"leadin"`
	Parts  []partDoc `yaml:"parts"`
}

type partDoc struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Value    int    `yaml:"value,omitempty"`
}

// Parse decodes a packet document and checks that every question can be
// read. All problems are reported together.
func Parse(r io.Reader) (quizbowl.Packet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return quizbowl.Packet{}, errors.New("packet is empty")
		}
		return quizbowl.Packet{}, fmt.Errorf("decoding packet: %w", err)
	}
	if err := doc.validate(); err != nil {
		return quizbowl.Packet{}, err
	}
	return doc.packet(), nil
}

// Load reads a packet file from disk.
func Load(path string) (quizbowl.Packet, error) {
	f, err := os.Open(path)
	if err != nil {
		return quizbowl.Packet{}, fmt.Errorf("opening packet: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return quizbowl.Packet{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Write encodes p in the same document shape Parse reads.
func Write(w io.Writer, p quizbowl.Packet) error {
	doc := fromPacket(p)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding packet: %w", err)
	}
	return enc.Close()
}

// Validate applies the checks Parse makes to a packet built elsewhere.
func Validate(p quizbowl.Packet) error {
	return fromPacket(p).validate()
}

func fromPacket(p quizbowl.Packet) document {
	doc := document{}
	for _, t := range p.Tossups {
		doc.Tossups = append(doc.Tossups, tossupDoc{Question: t.Question, Answer: t.Answer})
	}
	for _, b := range p.Bonuses {
		bd := bonusDoc{Leadin: b.Leadin}
		for _, part := range b.Parts {
			bd.Parts = append(bd.Parts, partDoc{Question: part.Question, Answer: part.Answer, Value: part.Value})
		}
		doc.Bonuses = append(doc.Bonuses, bd)
	}
	return doc
}

func (d document) validate() error {
	var errs []error
	if len(d.Tossups) == 0 {
		errs = append(errs, errors.New("packet has no tossups"))
	}
	for i, t := range d.Tossups {
		if strings.TrimSpace(t.Question) == "" {
			errs = append(errs, fmt.Errorf("tossup %d: question is empty", i+1))
		}
		if strings.TrimSpace(t.Answer) == "" {
			errs = append(errs, fmt.Errorf("tossup %d: answer is empty", i+1))
		}
	}
	if len(d.Bonuses) > len(d.Tossups) {
		errs = append(errs, fmt.Errorf("%d bonuses for %d tossups", len(d.Bonuses), len(d.Tossups)))
	}
	for i, b := range d.Bonuses {
		if len(b.Parts) == 0 {
			errs = append(errs, fmt.Errorf("bonus %d: no parts", i+1))
		}
		for j, part := range b.Parts {
			if strings.TrimSpace(part.Question) == "" {
				errs = append(errs, fmt.Errorf("bonus %d part %d: question is empty", i+1, j+1))
			}
			if part.Value < 0 {
				errs = append(errs, fmt.Errorf("bonus %d part %d: negative value", i+1, j+1))
			}
		}
	}
	return errors.Join(errs...)
}

func (d document) packet() quizbowl.Packet {
	p := quizbowl.Packet{Tossups: make([]quizbowl.Tossup, 0, len(d.Tossups))}
	for _, t := range d.Tossups {
		p.Tossups = append(p.Tossups, quizbowl.Tossup{
			Question: strings.TrimSpace(t.Question),
			Answer:   strings.TrimSpace(t.Answer),
		})
	}
	for _, b := range d.Bonuses {
		bonus := quizbowl.Bonus{Leadin: strings.TrimSpace(b.Leadin)}
		for _, part := range b.Parts {
			bonus.Parts = append(bonus.Parts, quizbowl.BonusQuestion{
				Question: strings.TrimSpace(part.Question),
				Answer:   strings.TrimSpace(part.Answer),
				Value:    part.Value,
			})
		}
		p.Bonuses = append(p.Bonuses, bonus)
	}
	return p
}
