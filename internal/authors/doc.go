// Package authors manages the author/affiliation rows of a manuscript submission form.
//
// An [Editor] keeps an ordered list of [Row] values. Each row carries a stable ID assigned at creation
// and a pair of positional identifiers (auth-{i} for the row, rem-{i} for its remove control) that are
// rewritten after every insertion or removal, along with the "Author N" / "Affiliation N" labels.
//
// The editor never drops below one row: the remove control of a lone row is disabled and hidden, and
// removal requests for it are ignored.
//
// [Normalize] validates the submitted name/affiliation values before they leave the form.
package authors
