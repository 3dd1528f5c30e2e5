package shared

// RepScope is the resolved set of sales rep ids a request is restricted to.
// An unrestricted scope matches every rep. A restricted scope with no ids
// must produce empty results, never the unfiltered aggregate.
type RepScope struct {
	Restricted bool
	IDs        []int64
}

// AllReps is the unrestricted scope.
func AllReps() RepScope {
	return RepScope{}
}

// Team restricts the scope to the given rep ids.
func Team(ids []int64) RepScope {
	return RepScope{Restricted: true, IDs: ids}
}

// Empty reports whether the scope is restricted to nobody.
func (s RepScope) Empty() bool {
	return s.Restricted && len(s.IDs) == 0
}

// Param returns the id slice to bind as a SQL array parameter, nil when the
// scope is unrestricted.
func (s RepScope) Param() []int64 {
	if !s.Restricted {
		return nil
	}
	return s.IDs
}

// Contains reports whether the rep id is inside the scope.
func (s RepScope) Contains(id int64) bool {
	if !s.Restricted {
		return true
	}
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}
