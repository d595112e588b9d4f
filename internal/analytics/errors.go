// Package analytics filters, sorts and aggregates pitch collections.  Every
// function is pure: inputs are never modified and no state is kept between
// calls.
package analytics

import "errors"

// ErrInvalidCriteria is returned when a filter or sort value is outside its
// domain, for example a non-numeric season.  It is raised before any data is
// read.
var ErrInvalidCriteria = errors.New("invalid criteria")
