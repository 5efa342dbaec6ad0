package model

import (
	"cmp"
	"math"
	"strconv"
)

// RankColumn shows the 1-based position of each row in its ranking's
// current order. Ranks are read from the table the ranking builds once per
// recompute. Rows outside the order have no rank.
type RankColumn struct {
	columnBase
}

// NewRankColumn creates a rank column.
func NewRankColumn(desc *Descriptor) *RankColumn {
	desc = descOf(desc, KindRank)
	c := &RankColumn{}
	c.columnBase = newColumnBase(c, desc)
	if desc.Width <= 0 {
		c.width = 50
	}
	return c
}

// Rank returns the rank of the row at index, 0 when it is not ranked.
func (c *RankColumn) Rank(_ Row, index int) int {
	r := c.Ranking()
	if r == nil {
		return 0
	}
	return r.RankOf(index)
}

func (c *RankColumn) Value(row Row, index int) any { return c.Rank(row, index) }

func (c *RankColumn) Label(row Row, index int) string {
	if rk := c.Rank(row, index); rk > 0 {
		return strconv.Itoa(rk)
	}
	return ""
}

// Compare orders by rank, unranked rows last.
func (c *RankColumn) Compare(a, b Row, ia, ib int) int {
	ra, rb := c.Rank(a, ia), c.Rank(b, ib)
	if ra == 0 {
		ra = math.MaxInt
	}
	if rb == 0 {
		rb = math.MaxInt
	}
	return cmp.Compare(ra, rb)
}

func (c *RankColumn) Dump(toRef func(*Descriptor) string) Dump {
	return c.dumpBase(toRef)
}
