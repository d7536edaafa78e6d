// Command itcx extracts the album artwork embedded in iTunes .itc cache
// files. Raw ARGB artwork is converted to PNG on the way out; PNG and JPEG
// artwork is written byte for byte.
package main
