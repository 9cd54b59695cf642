package console

import (
	"strconv"

	"partners-cli/internal/model"
)

// MaxInlineTags is how many country tags a row shows before the "+N More" tag.
const MaxInlineTags = 5

// Row is the display form of a record in the list.
type Row struct {
	ID       string
	UserName string
	UserCode string
	// Tags holds at most MaxInlineTags countries, in record order.
	Tags []string
	// Hidden counts the countries left out of Tags.
	Hidden int
	// More is "+N More" when the record has more than MaxInlineTags countries.
	More string
}

func RowFor(r model.Record) Row {
	row := Row{ID: r.ID, UserName: r.UserName, UserCode: r.UserCode}
	n := len(r.Countries)
	if n > MaxInlineTags {
		row.Tags = model.CloneCountries(r.Countries[:MaxInlineTags])
		row.Hidden = n - MaxInlineTags
		row.More = MoreLabel(row.Hidden)
	} else {
		row.Tags = model.CloneCountries(r.Countries)
	}
	return row
}

func MoreLabel(hidden int) string {
	return "+" + strconv.Itoa(hidden) + " More"
}

// Rows renders the current snapshot.
func (c *Console) Rows() []Row {
	recs := c.Snapshot()
	out := make([]Row, 0, len(recs))
	for _, r := range recs {
		out = append(out, RowFor(r))
	}
	return out
}

// Empty state copy, shown when the snapshot has no records.
const (
	EmptyTitle  = "Create a new user"
	EmptyBody   = "Add user details, set permissions, and assign roles to manage access within your system."
	EmptyAction = "New User"
)
