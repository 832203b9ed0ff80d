package profiler

// CellMap is an integer raster co-sized with a scan: -1 means no cell, 1 is
// the fringe (added later by FringeGrower), and values >= 2 are cell
// identifiers (spec.md §3).
type CellMap struct {
	nAzim, nRang int
	data         []int32
}

// NewCellMap allocates a CellMap initialized to "no cell" (-1).
func NewCellMap(nAzim, nRang int) *CellMap {
	data := make([]int32, nAzim*nRang)
	for i := range data {
		data[i] = -1
	}
	return &CellMap{nAzim: nAzim, nRang: nRang, data: data}
}

func (c *CellMap) wrapAzim(iAzim int) int {
	return ((iAzim % c.nAzim) + c.nAzim) % c.nAzim
}

// Get returns the label at (iAzim, iRang). iAzim wraps cyclically; iRang
// out of [0,nRang) returns -1 (treated as "no cell" for neighbor lookups
// at the range edges, which are not cyclic).
func (c *CellMap) Get(iAzim, iRang int) int32 {
	if iRang < 0 || iRang >= c.nRang {
		return -1
	}
	return c.data[c.wrapAzim(iAzim)*c.nRang+iRang]
}

// Set assigns the label at (iAzim, iRang).
func (c *CellMap) Set(iAzim, iRang int, label int32) {
	if iRang < 0 || iRang >= c.nRang {
		return
	}
	c.data[c.wrapAzim(iAzim)*c.nRang+iRang] = label
}

// NAzim returns the azimuth dimension.
func (c *CellMap) NAzim() int { return c.nAzim }

// NRang returns the range dimension.
func (c *CellMap) NRang() int { return c.nRang }

// ReplaceAll rewrites every occurrence of from with to across the full
// raster. Used by CellFinder's merge and seam-fix steps; CellAnalyzer's
// dense renumbering uses Remap instead.
func (c *CellMap) ReplaceAll(from, to int32) {
	if from == to {
		return
	}
	for i, v := range c.data {
		if v == from {
			c.data[i] = to
		}
	}
}

// Remap rewrites every label through a lookup table in one pass, used for
// the dense-renumbering step after dropping (design note §9: a temporary
// mapping table instead of the source's sign-trick renumbering). table
// maps old label -> new label; labels absent from table are left unchanged.
func (c *CellMap) Remap(table map[int32]int32) {
	for i, v := range c.data {
		if nv, ok := table[v]; ok {
			c.data[i] = nv
		}
	}
}
