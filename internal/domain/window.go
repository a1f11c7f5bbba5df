package domain

import "time"

// WindowState is the display status of a registration window at an instant.
type WindowState string

const (
	WindowNotStarted  WindowState = "not_started"
	WindowOpen        WindowState = "open"
	WindowUnderReview WindowState = "under_review"
	WindowClosed      WindowState = "closed"
)

// RegistrationWindow holds the configured window instants. All are optional.
type RegistrationWindow struct {
	Start     *time.Time
	End       *time.Time
	ReviewEnd *time.Time
}

// StateAt evaluates the window at the given instant. This is the single
// source of truth for both server-side edit gating and status badges; the
// rules are ordered and the first match wins.
func (w RegistrationWindow) StateAt(now time.Time) WindowState {
	if w.Start != nil && now.Before(*w.Start) {
		return WindowNotStarted
	}
	if w.End != nil && !now.After(*w.End) {
		return WindowOpen
	}
	if w.ReviewEnd != nil && w.End != nil && now.After(*w.End) && !now.After(*w.ReviewEnd) {
		return WindowUnderReview
	}
	return WindowClosed
}

// ClosingInstant returns the instant after which edits are refused:
// reviewEnd when configured, else the registration end. ok is false when
// neither is configured, in which case edits are never window-blocked.
func (w RegistrationWindow) ClosingInstant() (time.Time, bool) {
	if w.ReviewEnd != nil {
		return *w.ReviewEnd, true
	}
	if w.End != nil {
		return *w.End, true
	}
	return time.Time{}, false
}

// ClosedAt reports whether the editing window has passed at the given instant.
func (w RegistrationWindow) ClosedAt(now time.Time) bool {
	closing, ok := w.ClosingInstant()
	return ok && now.After(closing)
}
