package sequencer

import (
	"fmt"
	"time"
)

const (
	// ShortWait bounds waits for elements that may legitimately never appear.
	ShortWait = 5 * time.Second
	// LongWait bounds waits for elements the flow cannot continue without.
	LongWait = 15 * time.Second
)

type LocatorKind int

const (
	ByID LocatorKind = iota
	ByXPath
)

// Locator identifies zero or more elements in the live DOM.
type Locator struct {
	Kind  LocatorKind
	Value string
}

func ID(id string) Locator { return Locator{Kind: ByID, Value: id} }

func XPath(xp string) Locator { return Locator{Kind: ByXPath, Value: xp} }

func (l Locator) String() string { return fmt.Sprintf("%s(%s)", l.Kind, l.Value) }

func (k LocatorKind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Readiness is the condition polled on a located element before it is returned.
type Readiness int

const (
	Present Readiness = iota
	Visible
	Clickable
	SelectedKnown
)

func (r Readiness) String() string {
	switch r {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	case SelectedKnown:
		return "selected-known"
	default:
		return "unknown"
	}
}

type Action int

const (
	// Navigate loads Step.Value as a URL.
	Navigate Action = iota
	// Await only waits for the element to satisfy Ready.
	Await
	Click
	// Input types Step.Value into the element.
	Input
	// EnsureSelected clicks a checkbox only when it is not already selected.
	EnsureSelected
	// ScrollClick scrolls the element to the viewport centre, lets the page
	// settle, re-locates it and clicks the fresh reference.
	ScrollClick
)

func (a Action) String() string {
	switch a {
	case Navigate:
		return "navigate"
	case Await:
		return "await"
	case Click:
		return "click"
	case Input:
		return "input"
	case EnsureSelected:
		return "ensure-selected"
	case ScrollClick:
		return "scroll-click"
	default:
		return "unknown"
	}
}

// Step is one unit of the run. Steps exist only for the duration of a run.
type Step struct {
	Name     string
	Locator  Locator
	Ready    Readiness
	Action   Action
	Value    string
	Timeout  time.Duration
	Optional bool
}

func (s Step) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	if s.Optional {
		return ShortWait
	}
	return LongWait
}
