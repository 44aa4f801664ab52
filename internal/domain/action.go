package domain

import "fmt"

// ActionKind identifies the change applied to a DNS record.
type ActionKind string

const (
	ActionAdd    ActionKind = "add"
	ActionUpdate ActionKind = "update"
)

// Action is a single change to apply to the DNS record store.
type Action struct {
	Kind   ActionKind
	Domain string
	IP     string
	// PreviousIP is the IP currently held by the DNS store. Only set for updates.
	PreviousIP string
}

func (a Action) String() string {
	if a.Kind == ActionUpdate {
		return fmt.Sprintf("update %s %s -> %s", a.Domain, a.PreviousIP, a.IP)
	}
	return fmt.Sprintf("%s %s %s", a.Kind, a.Domain, a.IP)
}

// Result is the outcome of executing one action.
type Result struct {
	Action Action
	// DeleteStatus is the HTTP status of the delete step of an update, 0 if not sent.
	DeleteStatus int
	// AddStatus is the HTTP status of the add step, 0 if not sent.
	AddStatus int
	Err       error
}

// Report summarizes a reconciliation run.
type Report struct {
	SourceRecords int
	TargetRecords int
	Actions       []Action
	Results       []Result
	Mismatches    []Mismatch
	DryRun        bool
}

// Failed returns the number of results that carry a transport error.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Mismatch records a domain whose resolved addresses do not include the
// expected IP after the actions were applied.
type Mismatch struct {
	Domain   string
	Expected string
	Got      []string
}
