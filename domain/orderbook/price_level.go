package orderbook

// PriceLevel is a FIFO queue at a single price.
type PriceLevel struct {
	Price Price

	head *RestingOrder
	tail *RestingOrder

	TotalSize  Size
	OrderCount int
}

func (p *PriceLevel) Enqueue(o *RestingOrder) {
	o.level = p
	o.next = nil
	if p.head == nil {
		o.prev = nil
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalSize += o.Remaining
	p.OrderCount++
}

// Remove unlinks o wherever it sits. Siblings keep their relative order.
func (p *PriceLevel) Remove(o *RestingOrder) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	o.next = nil
	o.prev = nil
	o.level = nil

	p.TotalSize -= o.Remaining
	p.OrderCount--
}

// fill takes n off the front order's remaining size.
func (p *PriceLevel) fill(o *RestingOrder, n Size) {
	o.Remaining -= n
	p.TotalSize -= n
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Read-only helper
func (p *PriceLevel) Head() *RestingOrder {
	return p.head
}

// Orders returns the level front to back.
func (p *PriceLevel) Orders() []*RestingOrder {
	out := make([]*RestingOrder, 0, p.OrderCount)
	for o := p.head; o != nil; o = o.next {
		out = append(out, o)
	}
	return out
}
