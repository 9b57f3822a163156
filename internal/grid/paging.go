package grid

import "github.com/roach88/wgrid/internal/value"

// Paging is the paging window exchanged with a source. Every member
// round-trips through Search except TotalCount, which the source owns.
type Paging struct {
	PageNo     int `json:"pageNo" yaml:"pageNo"`
	PageSize   int `json:"pageSize" yaml:"pageSize"`
	PageBlock  int `json:"pageBlock" yaml:"pageBlock"`
	TotalCount int `json:"totalCount" yaml:"totalCount"`
}

// Offset returns the zero-based index of the first row on the page.
// Pages are 1-based; PageNo below 1 is treated as 1.
func (p Paging) Offset() int {
	if p.PageSize <= 0 || p.PageNo <= 1 {
		return 0
	}
	return (p.PageNo - 1) * p.PageSize
}

// LastPage returns the number of the last page, at least 1.
func (p Paging) LastPage() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// BlockRange returns the first and last page link shown in the block that
// contains PageNo. A PageBlock of 0 or less shows a single page.
func (p Paging) BlockRange() (first, last int) {
	block := max(p.PageBlock, 1)
	page := min(max(p.PageNo, 1), p.LastPage())

	first = ((page-1)/block)*block + 1
	last = min(first+block-1, p.LastPage())
	return first, last
}

// Parameter is the last query sent to a source.
type Parameter struct {
	Values value.Object `json:"values,omitempty" yaml:"values,omitempty"`
	Paging Paging       `json:"paging" yaml:"paging"`
}

// Clone returns a deep copy of p.
func (p Parameter) Clone() Parameter {
	return Parameter{Values: p.Values.Clone(), Paging: p.Paging}
}
