// Package store keeps the knowledge base of solved kalah positions.
//
// Two disjoint key sets are held in memory:
//   - wins: positions where the side to move has a forced win
//   - draws: positions whose outcome is a forced draw
//
// Both only ever grow. They are persisted as headerless files of
// little-endian uint64 keys (wins.u64, draws.u64), written through a
// temporary file and a rename so a crash never leaves a torn snapshot.
// Archives of the same files may be zstd compressed (*.u64.zst).
package store
