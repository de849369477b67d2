package tessellation

// Partition splits the flat cell array into the inner block followed by the outer block, each laid out [x][y]
type Partition struct {
	NXIn, NXOut int
	NYIn, NYOut int
}

func NewPartition(nXPlus, nPhiPlus int) (p *Partition, err error) {
	if err = checkGridExtent(nXPlus, nPhiPlus); err != nil {
		return
	}
	var (
		nXReal = 2*nXPlus - 1
		nYReal = nPhiPlus
	)
	p = &Partition{
		NXIn:  nXReal / 2,
		NYIn:  nYReal - 1,
		NYOut: nYReal,
	}
	p.NXOut = p.NXIn + 1
	return
}

func (p *Partition) NInner() int { return p.NXIn * p.NYIn }
func (p *Partition) NOuter() int { return p.NXOut * p.NYOut }
func (p *Partition) Total() int  { return p.NInner() + p.NOuter() }

func (p *Partition) InnerRange() (begin, end int) { return 0, p.NInner() }

func (p *Partition) OuterRange() (begin, end int) { return p.NInner(), p.Total() }

// InnerCell returns the flat cell index of inner cell (x, y)
func (p *Partition) InnerCell(x, y int) int {
	if x < 0 || x >= p.NXIn || y < 0 || y >= p.NYIn {
		panic("inner cell index out of range")
	}
	return x*p.NYIn + y
}

// OuterCell returns the flat cell index of outer cell (x, y), negative indices count back from the last row
func (p *Partition) OuterCell(x, y int) int {
	if x < 0 {
		x += p.NXOut
	}
	if y < 0 {
		y += p.NYOut
	}
	if x < 0 || x >= p.NXOut || y < 0 || y >= p.NYOut {
		panic("outer cell index out of range")
	}
	return p.NInner() + x*p.NYOut + y
}

// Consistent reports whether the partition matches the cell counts produced by a replication
func (p *Partition) Consistent(rep *Replicated) bool {
	return p.NInner() == rep.NInner && p.NOuter() == rep.NOuter
}
