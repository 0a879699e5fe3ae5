package quizbowl

import (
	"errors"
	"fmt"
	"strings"
)

// GameFormat is the scoring configuration of a game. It is a value: a game
// replaces its format wholesale and never edits it in place.
type GameFormat struct {
	DisplayName                  string   `json:"displayName" yaml:"displayName"`
	RegulationTossupCount        int      `json:"regulationTossupCount" yaml:"regulationTossupCount"`
	MinimumOvertimeQuestionCount int      `json:"minimumOvertimeQuestionCount" yaml:"minimumOvertimeQuestionCount"`
	OvertimeIncludesBonuses      bool     `json:"overtimeIncludesBonuses" yaml:"overtimeIncludesBonuses"`
	TossupValue                  int      `json:"tossupValue" yaml:"tossupValue"`
	NegValue                     int      `json:"negValue" yaml:"negValue"`
	PowerMarkers                 []string `json:"powerMarkers" yaml:"powerMarkers"`
	PowerValues                  []int    `json:"powerValues" yaml:"powerValues"`
	BonusPartValues              []int    `json:"bonusPartValues" yaml:"bonusPartValues"`
	AllowBonusWithoutTrigger     bool     `json:"allowBonusWithoutTrigger" yaml:"allowBonusWithoutTrigger"`
	PronunciationGuideMarkers    []string `json:"pronunciationGuideMarkers,omitempty" yaml:"pronunciationGuideMarkers,omitempty"`
}

var (
	ACFFormat = GameFormat{
		DisplayName:                  "ACF",
		RegulationTossupCount:        20,
		MinimumOvertimeQuestionCount: 1,
		TossupValue:                  10,
		NegValue:                     -5,
		BonusPartValues:              []int{10, 10, 10},
		PronunciationGuideMarkers:    []string{"(", ")"},
	}

	PACEFormat = GameFormat{
		DisplayName:                  "PACE NSC",
		RegulationTossupCount:        20,
		MinimumOvertimeQuestionCount: 1,
		TossupValue:                  10,
		NegValue:                     0,
		PowerMarkers:                 []string{"(*)"},
		PowerValues:                  []int{20},
		BonusPartValues:              []int{10, 10, 10},
		PronunciationGuideMarkers:    []string{"(", ")"},
	}

	StandardPowersFormat = GameFormat{
		DisplayName:                  "Standard w/ powers",
		RegulationTossupCount:        20,
		MinimumOvertimeQuestionCount: 1,
		TossupValue:                  10,
		NegValue:                     -5,
		PowerMarkers:                 []string{"(*)"},
		PowerValues:                  []int{15},
		BonusPartValues:              []int{10, 10, 10},
		PronunciationGuideMarkers:    []string{"(", ")"},
	}

	// UndefinedFormat lets any number of questions be regulation and
	// accepts bonuses without a triggering tossup.
	UndefinedFormat = GameFormat{
		DisplayName:                  "Unspecified",
		RegulationTossupCount:        999,
		MinimumOvertimeQuestionCount: 0,
		OvertimeIncludesBonuses:      true,
		TossupValue:                  10,
		NegValue:                     -5,
		PowerMarkers:                 []string{"(*)"},
		PowerValues:                  []int{15},
		BonusPartValues:              []int{10, 10, 10},
		AllowBonusWithoutTrigger:     true,
	}
)

var formatsByName = map[string]GameFormat{
	"acf":       ACFFormat,
	"pace":      PACEFormat,
	"powers":    StandardPowersFormat,
	"undefined": UndefinedFormat,
}

// FormatNames lists the preset names accepted by FormatByName.
func FormatNames() []string {
	return []string{"acf", "pace", "powers", "undefined"}
}

// FormatByName returns a copy of a preset format.
func FormatByName(name string) (GameFormat, error) {
	f, ok := formatsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return GameFormat{}, fmt.Errorf("unknown game format %q", name)
	}
	return f.clone(), nil
}

// Validate reports a format that cannot score a game.
func (f GameFormat) Validate() error {
	var errs []error
	if f.RegulationTossupCount < 0 {
		errs = append(errs, errors.New("regulation tossup count must not be negative"))
	}
	if f.MinimumOvertimeQuestionCount < 0 {
		errs = append(errs, errors.New("minimum overtime question count must not be negative"))
	}
	if len(f.PowerMarkers) != len(f.PowerValues) {
		errs = append(errs, fmt.Errorf("%d power markers but %d power values", len(f.PowerMarkers), len(f.PowerValues)))
	}
	if len(f.BonusPartValues) == 0 {
		errs = append(errs, errors.New("at least one bonus part value is required"))
	}
	for i, v := range f.BonusPartValues {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("bonus part %d value must be positive", i))
		}
	}
	return errors.Join(errs...)
}

// BonusPartCount is the number of parts each bonus is expected to have.
func (f GameFormat) BonusPartCount() int {
	return len(f.BonusPartValues)
}

// IsOvertime reports whether the cycle index is past regulation.
func (f GameFormat) IsOvertime(cycleIndex int) bool {
	return cycleIndex >= f.RegulationTossupCount
}

func (f GameFormat) clone() GameFormat {
	f.PowerMarkers = append([]string(nil), f.PowerMarkers...)
	f.PowerValues = append([]int(nil), f.PowerValues...)
	f.BonusPartValues = append([]int(nil), f.BonusPartValues...)
	f.PronunciationGuideMarkers = append([]string(nil), f.PronunciationGuideMarkers...)
	return f
}

// partPoints values a correct bonus part with the live format, falling back
// to the points stored on the event when the format has no such part.
func (f GameFormat) partPoints(p BonusPart) int {
	if p.Index >= 0 && p.Index < len(f.BonusPartValues) {
		return f.BonusPartValues[p.Index]
	}
	return p.Points
}
