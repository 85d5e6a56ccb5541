package booking

import "time"

// Target identifies the class to book on the sports site.
type Target struct {
	Center   string `yaml:"center"`
	Activity string `yaml:"activity"`
	TimeSlot string `yaml:"time_slot"` // start time as shown in the slot list, e.g. "12:00"
}

type Site struct {
	LoginURL string `yaml:"login_url"`
	HomeURL  string `yaml:"home_url"`
}

type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func DefaultTarget() Target {
	return Target{
		Center:   "Faustina Valladolid",
		Activity: "Sala multitrabajo",
		TimeSlot: "12:00",
	}
}

func DefaultSite() Site {
	return Site{
		LoginURL: "https://deportesweb.madrid.es/DeportesWeb/login",
		HomeURL:  "https://deportesweb.madrid.es/DeportesWeb/Home",
	}
}

type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Run is the record of one invocation, persisted when history is enabled.
type Run struct {
	ID         string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	TargetDate *time.Time

	// Index and name of the failing mandatory step; -1 when none.
	FailedStep int
	StepName   string
	Reason     string
	Artifact   string
}
