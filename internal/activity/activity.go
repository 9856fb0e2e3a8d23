// Package activity maps the vendor engine's push-style progress events onto
// the host's activity protocol. The host tracks progress as nested
// activities with an explicit lifecycle: every activity that is started must
// be completed exactly once, and updates may only be reported against an
// open activity.
//
// Install and uninstall use a Tracker, which rotates activities as the
// vendor's action code changes. Download uses a Flat span: one activity
// opened before the vendor call and closed once after it, regardless of how
// many events arrive. The asymmetry is deliberate; the download engine emits
// a single byte-progress phase while install/uninstall walk through named
// phases worth surfacing individually.
package activity

import "fmt"

// Reporter is the host-side activity protocol. Implementations are provided
// by the host (or by the console harness); activity ids are assigned by the
// reporter and are opaque to this package apart from zero meaning "none".
type Reporter interface {
	// StartActivity opens a new activity under parentID and returns its id.
	// Returned ids must be non-zero.
	StartActivity(parentID int, label string) int

	// ReportProgress reports percent complete and a status message against
	// an open activity.
	ReportProgress(activityID, percent int, message string)

	// CompleteActivity closes an activity. Called exactly once per started
	// activity.
	CompleteActivity(activityID int, success bool)
}

// Tracker converts a stream of (action, percent, message) events into
// rotating activities: events with the same action code update the open
// activity, a changed action code closes it and opens the next one. A
// Tracker is private to one operation and must not be shared.
type Tracker struct {
	reporter   Reporter
	parentID   int
	label      string
	activityID int
	lastAction string
}

// NewTracker returns a Tracker reporting under parentID. The label is reused
// for every activity the tracker opens; the action code distinguishes them
// in the progress messages.
func NewTracker(r Reporter, parentID int, label string) *Tracker {
	return &Tracker{
		reporter: r,
		parentID: parentID,
		label:    label,
	}
}

// Observe handles one vendor progress event. Safe to call repeatedly from
// the vendor's callback context while the operation blocks on the engine.
func (t *Tracker) Observe(action string, percent int, message string) {
	if t.activityID == 0 {
		t.activityID = t.reporter.StartActivity(t.parentID, t.label)
		t.lastAction = action
	} else if action != t.lastAction {
		t.reporter.CompleteActivity(t.activityID, true)
		t.activityID = t.reporter.StartActivity(t.parentID, t.label)
		t.lastAction = action
	}

	t.reporter.ReportProgress(t.activityID, percent, fmt.Sprintf("%s %s", action, message))
}

// Finish closes whatever activity is open. It must be called when the
// vendor call returns, whether or not any events were observed; calling it
// with nothing open is a no-op.
func (t *Tracker) Finish(success bool) {
	if t.activityID == 0 {
		return
	}
	t.reporter.CompleteActivity(t.activityID, success)
	t.activityID = 0
	t.lastAction = ""
}

// Flat is the download-path span: exactly one activity for the whole
// operation, opened up front.
type Flat struct {
	reporter   Reporter
	activityID int
}

// StartFlat opens the single activity immediately. Even a vendor call that
// fails before its first progress event leaves the host with a matched
// start/complete pair.
func StartFlat(r Reporter, parentID int, label string) *Flat {
	return &Flat{
		reporter:   r,
		activityID: r.StartActivity(parentID, label),
	}
}

// Observe reports one event against the span's activity. Action codes do
// not rotate the activity here.
func (f *Flat) Observe(action string, percent int, message string) {
	if f.activityID == 0 {
		return
	}
	f.reporter.ReportProgress(f.activityID, percent, fmt.Sprintf("%s %s", action, message))
}

// Finish closes the span's activity. Subsequent calls are no-ops.
func (f *Flat) Finish(success bool) {
	if f.activityID == 0 {
		return
	}
	f.reporter.CompleteActivity(f.activityID, success)
	f.activityID = 0
}
