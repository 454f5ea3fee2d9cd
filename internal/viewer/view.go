package viewer

// Action names a transition a rendered view can offer.
type Action string

const (
	ActionPrevPage   Action = "prev_page"
	ActionNextPage   Action = "next_page"
	ActionPrevColumn Action = "prev_column"
	ActionNextColumn Action = "next_column"
	ActionCopy       Action = "copy"
)

// Affordances lists the transitions available from a view.
type Affordances struct {
	PrevPage   bool
	NextPage   bool
	PrevColumn bool
	NextColumn bool
	Copy       bool
}

// Actions returns the enabled actions in display order.
func (a Affordances) Actions() []Action {
	var out []Action
	if a.PrevPage {
		out = append(out, ActionPrevPage)
	}
	if a.NextPage {
		out = append(out, ActionNextPage)
	}
	if a.PrevColumn {
		out = append(out, ActionPrevColumn)
	}
	if a.NextColumn {
		out = append(out, ActionNextColumn)
	}
	if a.Copy {
		out = append(out, ActionCopy)
	}
	return out
}

// View is one rendered page. Row, page and column numbers are 1-based.
type View struct {
	Content string
	// Values counts the numeric cells that made it into Content.
	Values int

	StartRow  int
	EndRow    int
	TotalRows int
	Page      int
	Pages     int
	Column    int
	Columns   int

	Affordances Affordances
}
