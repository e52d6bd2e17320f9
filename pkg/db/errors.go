package db

import "errors"

// ErrPreferenceConflict is returned by MarkPreferencesSubmitted when one of
// the listed preferences changed state between validation and the guarded
// update, so nothing was written.
var ErrPreferenceConflict = errors.New("preferences changed state concurrently, nothing submitted")
