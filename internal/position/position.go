// Package position hashes chess positions with a generated Zobrist table.
//
// Each square is described by a state byte:
//
//	Bits:    | 0 | 1 | 2 | 3 |   4   |   5   |    6     |     7    |
//	Meaning: |     piece     | moved | owner | occupied | boundary |
//
// and the hash is the XOR of keys[rank][file][state] over all 64 squares.
// Castling rights live in the moved bit of kings and rooks.
// Boundary states never occur on the board, so keys[0][0][Boundary] is free
// to serve as the side-to-move key.
package position

import (
	"slices"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/zobristgen/internal/zobrist"
)

// Piece codes
const (
	Pawn   uint8 = 1
	Rook   uint8 = 2
	Knight uint8 = 3
	Bishop uint8 = 4
	Queen  uint8 = 5
	King   uint8 = 6
)

// State bits
const (
	PieceMask uint8 = 15
	Moved     uint8 = 16
	Owner     uint8 = 32 // set for black
	Occupied  uint8 = 64
	Boundary  uint8 = 128
)

// Empty is the state of an unoccupied square.
const Empty uint8 = 0

// Castling rights as reported in the FEN castling field.
const (
	castleWhiteKing  uint8 = 1 << iota // K
	castleWhiteQueen                   // Q
	castleBlackKing                    // k
	castleBlackQueen                   // q
)

// castleRights reads the castling rights of b. dragontoothmg keeps them
// unexported, so they come from the FEN.
func castleRights(b *dragontoothmg.Board) uint8 {
	fields := strings.Fields(b.ToFen())
	if len(fields) < 3 {
		return 0
	}
	var rights uint8
	for _, c := range fields[2] {
		switch c {
		case 'K':
			rights |= castleWhiteKing
		case 'Q':
			rights |= castleWhiteQueen
		case 'k':
			rights |= castleBlackKing
		case 'q':
			rights |= castleBlackQueen
		}
	}
	return rights
}

// SquareState returns the state byte for sq (a1=0 .. h8=63).
// Pawns that have left their home rank carry the Moved bit. Kings and rooks
// carry it unless they still hold a castling right, so positions that differ
// only in castling rights hash differently.
func SquareState(b *dragontoothmg.Board, sq uint8) uint8 {
	return squareState(b, sq, castleRights(b))
}

func squareState(b *dragontoothmg.Board, sq, rights uint8) uint8 {
	mask := uint64(1) << sq
	var state uint8

	switch {
	case b.White.All&mask != 0:
		state = pieceAt(&b.White, mask) | Occupied
	case b.Black.All&mask != 0:
		state = pieceAt(&b.Black, mask) | Occupied | Owner
	default:
		return Empty
	}
	if moved(state, sq, rights) {
		state |= Moved
	}
	return state
}

func moved(state, sq, rights uint8) bool {
	black := state&Owner != 0
	switch state & PieceMask {
	case Pawn:
		if black {
			return sq/8 != 6
		}
		return sq/8 != 1
	case King:
		switch {
		case !black && sq == 4:
			return rights&(castleWhiteKing|castleWhiteQueen) == 0
		case black && sq == 60:
			return rights&(castleBlackKing|castleBlackQueen) == 0
		}
		return true
	case Rook:
		switch {
		case !black && sq == 7:
			return rights&castleWhiteKing == 0
		case !black && sq == 0:
			return rights&castleWhiteQueen == 0
		case black && sq == 63:
			return rights&castleBlackKing == 0
		case black && sq == 56:
			return rights&castleBlackQueen == 0
		}
		return true
	}
	return false
}

func pieceAt(bb *dragontoothmg.Bitboards, mask uint64) uint8 {
	switch {
	case bb.Pawns&mask != 0:
		return Pawn
	case bb.Knights&mask != 0:
		return Knight
	case bb.Bishops&mask != 0:
		return Bishop
	case bb.Rooks&mask != 0:
		return Rook
	case bb.Queens&mask != 0:
		return Queen
	case bb.Kings&mask != 0:
		return King
	}
	return 0
}

// Hasher computes position hashes from a key table.
type Hasher struct {
	keys *zobrist.Table
}

// NewHasher returns a Hasher reading keys from t. The table must not change
// while the Hasher is in use.
func NewHasher(t *zobrist.Table) *Hasher {
	return &Hasher{keys: t}
}

func (h *Hasher) squareKey(sq, state uint8) uint64 {
	return h.keys.At(int(sq/8), int(sq%8), state)
}

// SideKey is XORed into the hash when black is to move.
func (h *Hasher) SideKey() uint64 {
	return h.keys.At(0, 0, Boundary)
}

// Hash computes the hash of b from scratch.
func (h *Hasher) Hash(b *dragontoothmg.Board) uint64 {
	rights := castleRights(b)
	var hash uint64
	for sq := uint8(0); sq < 64; sq++ {
		hash ^= h.squareKey(sq, squareState(b, sq, rights))
	}
	if !b.Wtomove {
		hash ^= h.SideKey()
	}
	return hash
}

// Apply plays m on b and returns the updated hash together with the
// function that takes the move back. Only the squares the move touches are
// rehashed.
func (h *Hasher) Apply(b *dragontoothmg.Board, hash uint64, m dragontoothmg.Move) (uint64, func()) {
	rights := castleRights(b)
	touched := touchedSquares(b, m)
	if rights != 0 {
		// Losing a right flips the Moved bit of a king or rook that may
		// not be part of the move itself.
		touched = appendMissing(touched, castlingSquares[:]...)
	}

	before := make([]uint8, len(touched))
	for i, sq := range touched {
		before[i] = squareState(b, sq, rights)
	}

	unapply := b.Apply(m)

	rights = castleRights(b)
	for i, sq := range touched {
		hash ^= h.squareKey(sq, before[i]) ^ h.squareKey(sq, squareState(b, sq, rights))
	}
	return hash ^ h.SideKey(), unapply
}

// King and rook home squares: a1, e1, h1, a8, e8, h8.
var castlingSquares = [...]uint8{0, 4, 7, 56, 60, 63}

func appendMissing(squares []uint8, extra ...uint8) []uint8 {
	for _, sq := range extra {
		if !slices.Contains(squares, sq) {
			squares = append(squares, sq)
		}
	}
	return squares
}

// touchedSquares lists every square whose state can change when m is played:
// origin and destination, the pawn taken en passant, and the rook squares of
// a castling move.
func touchedSquares(b *dragontoothmg.Board, m dragontoothmg.Move) []uint8 {
	from, to := m.From(), m.To()
	squares := []uint8{from, to}

	fromMask := uint64(1) << from
	toMask := uint64(1) << to
	occupied := b.White.All | b.Black.All
	pawns := b.White.Pawns | b.Black.Pawns
	kings := b.White.Kings | b.Black.Kings

	switch {
	case pawns&fromMask != 0 && from%8 != to%8 && occupied&toMask == 0:
		// En passant: the captured pawn sits beside the origin square.
		squares = append(squares, (from/8)*8+to%8)
	case kings&fromMask != 0 && to == from+2:
		squares = append(squares, from+3, from+1)
	case kings&fromMask != 0 && from >= 2 && to == from-2:
		squares = append(squares, from-4, from-1)
	}
	return squares
}

// Slot maps a hash to a transposition-table index of the given bit width.
func Slot(hash uint64, bits uint) uint64 {
	if bits >= 64 {
		return hash
	}
	return hash & (uint64(1)<<bits - 1)
}
