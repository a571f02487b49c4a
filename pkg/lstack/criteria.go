package lstack

import (
	"fmt"
	"strings"
)

// A Criterion decides, at one pixel, whether a candidate brightness
// beats the best one seen so far. It must be strict: on a tie the
// incumbent (the earlier image in the batch) keeps the pixel.
type Criterion func(candidate, incumbent float64) bool

// Brightest is the lighten criterion (an argmax).
func Brightest(candidate, incumbent float64) bool { return candidate > incumbent }

// Darkest is the darken criterion (an argmin).
func Darkest(candidate, incumbent float64) bool { return candidate < incumbent }

// A Mode is one kind of composite the compositor produces, and the
// results sub-folder it gets written into.
type Mode struct {
	Name      string
	Folder    string
	Criterion Criterion
}

var Modes = []Mode{
	{Name: "lighten", Folder: "Lighten", Criterion: Brightest},
	{Name: "darken", Folder: "Darken", Criterion: Darkest},
}

func ListModes() string {
	names := []string{}
	for _, m := range Modes {
		names = append(names, m.Name)
	}
	return fmt.Sprintf("%v", names)
}

func ModeByName(name string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("no composite mode named '%s', wanted one of %s", name, ListModes())
}

func CriterionByName(name string) (Criterion, error) {
	m, err := ModeByName(name)
	if err != nil {
		return nil, err
	}
	return m.Criterion, nil
}
