package ppu

// fifo is a simple ring buffer for 2-bit color indices (0..3).
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// vramReader abstracts bank-aware VRAM access for the fetcher.
type vramReader interface {
	readBank(bank int, addr uint16) byte
}

// bgFetcher pulls one tile row (8 pixels) into the FIFO, tracking both the
// color index and (on CGB) the tile attribute byte so the scanline compositor
// can apply palette, bank, and priority bits per pixel.
type bgFetcher struct {
	mem  vramReader
	fifo *fifo
	attr *attrFifo

	mapBase       uint16
	tileData8000  bool
	tileIndexAddr uint16
	fineY         byte
	cgb           bool
}

// attrFifo mirrors fifo but carries the CGB tile attribute byte alongside
// each pixel so the compositor can look up palette/bank/priority per pixel.
type attrFifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *attrFifo) Clear() { q.head, q.tail, q.size = 0, 0, 0 }

func (q *attrFifo) Push(a byte) {
	if q.size == len(q.buf) {
		return
	}
	q.buf[q.tail] = a
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
}

func (q *attrFifo) Pop() byte {
	if q.size == 0 {
		return 0
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v
}

func newBGFetcher(mem vramReader, f *fifo, a *attrFifo, cgb bool) *bgFetcher {
	return &bgFetcher{mem: mem, fifo: f, attr: a, cgb: cgb}
}

func (fch *bgFetcher) Configure(mapBase uint16, tileData8000 bool, tileIndexAddr uint16, fineY byte) {
	fch.mapBase = mapBase
	fch.tileData8000 = tileData8000
	fch.tileIndexAddr = tileIndexAddr
	fch.fineY = fineY & 7
}

// Fetch pushes 8 pixels (color indices, plus CGB attributes) for the current
// tile row into the FIFOs.
func (fch *bgFetcher) Fetch() {
	tileNum := fch.mem.readBank(0, fch.tileIndexAddr)

	var attr byte
	fineY := fch.fineY
	if fch.cgb {
		attr = fch.mem.readBank(1, fch.tileIndexAddr)
		if attr&0x40 != 0 { // vertical flip
			fineY = 7 - fineY
		}
	}
	bank := 0
	if attr&0x08 != 0 {
		bank = 1
	}

	var base uint16
	if fch.tileData8000 {
		base = 0x8000 + uint16(tileNum)*16 + uint16(fineY)*2
	} else {
		base = 0x9000 + uint16(int8(tileNum))*16 + uint16(fineY)*2
	}
	lo := fch.mem.readBank(bank, base)
	hi := fch.mem.readBank(bank, base+1)

	for px := 0; px < 8; px++ {
		bit := 7 - byte(px)
		if attr&0x20 != 0 { // horizontal flip
			bit = byte(px)
		}
		ci := (hi>>bit)&1<<1 | (lo>>bit)&1
		fch.fifo.Push(ci)
		if fch.attr != nil {
			fch.attr.Push(attr)
		}
	}
}
