package query

import "slices"

// Events return the next state. Every filter, search, date or sort change, and a page size change,
// resets the page to 1.

func (s State) SetQuery(q string) State {
	s.Q = q
	s.Page = 1
	return s
}

func (s State) SetStatus(values ...string) State {
	s.Status = NormalizeList(values)
	s.Page = 1
	return s
}

func (s State) SetPriority(values ...string) State {
	s.Priority = NormalizeList(values)
	s.Page = 1
	return s
}

// SetAssignee is a no-op under a locked assignee.
func (s State) SetAssignee(opts Options, values ...string) State {
	if opts.LockedAssignee != "" {
		return s
	}
	s.Assignee = NormalizeList(values)
	s.Page = 1
	return s
}

func (s State) SetDueRange(from, to string) State {
	s.DueFrom = parseDate(from)
	s.DueTo = parseDate(to)
	s.Page = 1
	return s
}

// ToggleSort flips the direction when the column is already sorted, otherwise sorts it ascending.
func (s State) ToggleSort(field SortField) State {
	if !field.valid() {
		return s
	}
	if s.SortBy == field {
		if s.SortDir == Asc {
			s.SortDir = Desc
		} else {
			s.SortDir = Asc
		}
	} else {
		s.SortBy = field
		s.SortDir = Asc
	}
	s.Page = 1
	return s
}

func (s State) SetPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// SetPageSize ignores sizes outside PageSizes.
func (s State) SetPageSize(size int) State {
	if !slices.Contains(PageSizes, size) {
		size = DefaultPageSize
	}
	s.PageSize = size
	s.Page = 1
	return s
}

// ToggleStatus narrows the list to one status, or clears the status filter if it is the only one selected.
func (s State) ToggleStatus(status string) State {
	if len(s.Status) == 1 && s.Status[0] == status {
		return s.SetStatus()
	}
	if status == "" {
		return s.SetStatus()
	}
	return s.SetStatus(status)
}

// SortDirFor reports the direction a column is currently sorted in, or "" when it is not the sort column.
func (s State) SortDirFor(field SortField) SortDir {
	if s.SortBy != field {
		return ""
	}
	return s.SortDir
}
