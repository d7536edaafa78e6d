// Package itc parses the iTunes .itc artwork cache container.
//
// An .itc stream is a sequence of big-endian size-prefixed frames. Three
// frame tags are recognized: "itch" (a thin metadata wrapper around a nested
// frame), "artw" (an obsolete fixed-size section), and "item" (one embedded
// image). The Reader walks the frames and yields one Image per item frame;
// image payloads are PNG, JPEG, or raw interleaved ARGB depending on the
// format tag inside the item header.
//
// The format was reverse-engineered; the preamble skip lengths for the two
// known producer versions are empirical constants with no documented meaning.
package itc
