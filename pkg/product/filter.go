package product

// Filter narrows a search response to the products a run should act on.
type Filter struct {
	Params Params
	// Report, when set, is called with each id as it is accepted.
	Report func(id string)
}

// Apply returns the ids of the records that pass every filter, in response
// order. It fails with ErrNoProductsFound on an empty response and with
// ErrMalformedIdentifier on the first primary record whose id cannot be
// decoded.
func (f Filter) Apply(records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoProductsFound
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Secondary() {
			continue
		}
		pair, err := ParseIdentifier(rec.FileID)
		if err != nil {
			return nil, err
		}
		if !f.Match(pair) {
			continue
		}
		ids = append(ids, rec.FileID)
		if f.Report != nil {
			f.Report(rec.FileID)
		}
	}
	return ids, nil
}

// Match applies the pair, date-range and baseline filters to one pair.
func (f Filter) Match(pair Pair) bool {
	p := f.Params

	if p.Pair != nil {
		if !p.Pair.Start.Equal(pair.Start.Time) || !p.Pair.End.Equal(pair.End.Time) {
			return false
		}
	}

	if p.Start != nil && pair.Start.Before(p.Start.Time) {
		return false
	}
	if p.End != nil && pair.End.After(p.End.Time) {
		return false
	}

	elapsed := pair.Baseline()
	if p.DaysMore != nil && !(elapsed > *p.DaysMore) {
		return false
	}
	if p.DaysLess != nil && !(elapsed < *p.DaysLess) {
		return false
	}
	return true
}
