package schedule

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weekdays is a weekday set written in YAML as English names ("monday" or "mon").
type Weekdays []time.Weekday

func (w Weekdays) String() string {
	names := make([]string, 0, len(w))
	for _, d := range w {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

func (w *Weekdays) UnmarshalYAML(node *yaml.Node) error {
	var raw []string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	out := make(Weekdays, 0, len(raw))
	for _, s := range raw {
		d, err := ParseWeekday(s)
		if err != nil {
			return err
		}
		out = append(out, d)
	}
	*w = out
	return nil
}

func (w Weekdays) MarshalYAML() (any, error) {
	out := make([]string, 0, len(w))
	for _, d := range w {
		out = append(out, strings.ToLower(d.String()))
	}
	return out, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if strings.HasPrefix(name, s) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
