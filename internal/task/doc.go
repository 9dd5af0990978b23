// Package task parses single todo.txt lines.
//
// A line follows the grammar
//
//	[x YYYY-MM-DD ][(A) ][YYYY-MM-DD ]text with +project @context due:YYYY-MM-DD t:YYYY-MM-DD
//
// The raw text is the only state a Task owns. Every other attribute is
// derived from it and recomputed in full whenever the text changes:
//
//   - completion marker and completion date ("x 2024-01-31 ")
//   - priority ("(A) " at the very start, uppercase only)
//   - creation date (after the priority, or after the completion date)
//   - +projects and @contexts, in order of appearance
//   - the first due: and t: (threshold) dates
//
// # Dates
//
// Dates are YYYY-MM-DD only. A date that is missing or fails to parse
// resolves to HighDate and an empty text field, so an absent due date
// never counts as due.
//
// # Notifications
//
// Subscribers registered with Subscribe receive the name of each attribute
// whose value changed, after the whole task has been recomputed.
package task
