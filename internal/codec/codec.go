// Package codec packs a kalah.Position into a 64-bit key.
//
// Each of the 14 cells (side 0 pits and store, then side 1) and the turn is
// written as that many 1 bits followed by a 0 bit, least significant bit
// first. 48 seeds, 15 terminators and a turn bit use exactly 64 bits, so every
// position of the classical game fits.
package codec

import (
	"errors"
	"fmt"

	"github.com/freeeve/kalah/internal/kalah"
)

// Key is a packed position.
type Key uint64

const keyBits = 64

var (
	// ErrOverflow is the panic value of Encode when a position needs more
	// than 64 bits.
	ErrOverflow = errors.New("codec: position does not fit in 64 bits")
	// ErrMalformedKey is returned by Decode for bit patterns Encode never
	// produces.
	ErrMalformedKey = errors.New("codec: malformed key")
)

type writer struct {
	key Key
	n   int
}

func (w *writer) field(v int) {
	if w.n+v+1 > keyBits {
		panic(fmt.Errorf("%w: field of %d after %d bits", ErrOverflow, v, w.n))
	}
	if v > 0 {
		w.key |= Key((uint64(1)<<v)-1) << w.n
	}
	w.n += v + 1
}

// Encode packs p. It panics with ErrOverflow if p does not fit.
func Encode(p kalah.Position) Key {
	var w writer
	for side := range p.Rows {
		for _, v := range p.Rows[side] {
			w.field(int(v))
		}
	}
	w.field(int(p.Turn))
	return w.key
}

type reader struct {
	key Key
	n   int
}

func (r *reader) field() (int, bool) {
	v := 0
	for {
		if r.n >= keyBits {
			return 0, false
		}
		bit := r.key >> r.n & 1
		r.n++
		if bit == 0 {
			return v, true
		}
		v++
	}
}

// Decode unpacks a key produced by Encode.
func Decode(k Key) (kalah.Position, error) {
	var p kalah.Position
	r := reader{key: k}
	for side := range p.Rows {
		for i := range p.Rows[side] {
			v, ok := r.field()
			if !ok || v > kalah.TotalSeeds {
				return kalah.Position{}, fmt.Errorf("%w: %#016x cell %d/%d", ErrMalformedKey, uint64(k), side, i)
			}
			p.Rows[side][i] = uint8(v)
		}
	}
	turn, ok := r.field()
	if !ok || turn > 1 {
		return kalah.Position{}, fmt.Errorf("%w: %#016x turn", ErrMalformedKey, uint64(k))
	}
	p.Turn = kalah.Player(turn)
	if r.n < keyBits && k>>r.n != 0 {
		return kalah.Position{}, fmt.Errorf("%w: %#016x trailing bits", ErrMalformedKey, uint64(k))
	}
	return p, nil
}

// MustDecode is Decode for keys known to come from Encode.
func MustDecode(k Key) kalah.Position {
	p, err := Decode(k)
	if err != nil {
		panic(err)
	}
	return p
}

func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}
