package lmrt

import (
	"errors"
	"fmt"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// ErrEntryTooLarge is joined into Err for entries that do not fit in an
// empty command.
var ErrEntryTooLarge = errors.New("routing entry exceeds command payload")

// EffectivePayload returns the payload limit used for a declared maximum.
// Zero or less means no limit was declared.
func EffectivePayload(declared int) int {
	if declared <= 0 || declared > wire.MaxRoutingTLVSize {
		return wire.MaxRoutingTLVSize
	}
	return declared
}

// SendFunc hands one routing command to the transport. The entries slice
// is only valid for the duration of the call.
type SendFunc func(cmd wire.SetRoutingCommand) error

// Packer packs routing entries into commands of at most a maximum payload
// size. When the next entry does not fit, the buffered entries are sent
// with the more flag set and packing continues in the emptied buffer.
// Entries are never split across commands, and an entry larger than the
// payload limit is dropped.
type Packer struct {
	buf   []byte
	max   int
	count int
	send  SendFunc

	sent    int
	failed  int
	bytes   int
	dropped int
	err     error
}

// NewPacker creates a packer writing into buf, which it borrows for the
// duration of the pass. maxPayload is limited by EffectivePayload.
func NewPacker(buf []byte, maxPayload int, send SendFunc) *Packer {
	return &Packer{
		buf:  buf[:0],
		max:  EffectivePayload(maxPayload),
		send: send,
	}
}

// Add appends one entry, flushing first if it would not fit. It reports
// whether a flush occurred.
func (p *Packer) Add(e wire.Entry) bool {
	if e.Size() > p.max {
		p.dropped++
		p.err = errors.Join(p.err, fmt.Errorf("%w: %s entry of %d bytes, limit %d",
			ErrEntryTooLarge, e.Tag, e.Size(), p.max))
		return false
	}
	flushed := false
	if p.count > 0 && len(p.buf)+e.Size() > p.max {
		p.Flush(true)
		flushed = true
	}
	p.buf = e.AppendTo(p.buf)
	p.count++
	return flushed
}

// Flush sends the buffered entries, even when there are none, and resets
// the buffer.
func (p *Packer) Flush(more bool) {
	err := p.send(wire.SetRoutingCommand{
		More:    more,
		Count:   uint8(p.count),
		Entries: p.buf,
	})
	if err != nil {
		p.failed++
		p.err = errors.Join(p.err, err)
	} else {
		p.sent++
		p.bytes += len(p.buf)
	}
	p.buf = p.buf[:0]
	p.count = 0
}

// MaxPayload returns the effective payload limit.
func (p *Packer) MaxPayload() int { return p.max }

// Offset returns the bytes buffered for the current command.
func (p *Packer) Offset() int { return len(p.buf) }

// Count returns the entries buffered for the current command.
func (p *Packer) Count() int { return p.count }

// Sent returns the number of commands the transport accepted.
func (p *Packer) Sent() int { return p.sent }

// Failed returns the number of commands the transport rejected.
func (p *Packer) Failed() int { return p.failed }

// Bytes returns the entry bytes in accepted commands.
func (p *Packer) Bytes() int { return p.bytes }

// Dropped returns the number of entries too large for any command.
func (p *Packer) Dropped() int { return p.dropped }

// Err returns the joined transport and oversize entry errors.
func (p *Packer) Err() error { return p.err }
