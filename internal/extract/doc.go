// Package extract turns .itc files on disk into image files on disk.
//
// It layers output naming, atomic writes, overwrite policy, and catalog
// bookkeeping on top of the itc reader and pngenc encoder, which stay free
// of filesystem concerns.
package extract
