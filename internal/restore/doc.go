// Package restore rebuilds the original bytes from a group of parts and
// optionally unpacks the result.
//
// The strategy passed on restore must be the one used to split. Parts of
// a SplitThenZip run are opened as single-entry containers, decrypted if
// needed, and streamed in index order into one file. Parts of a
// ZipThenSplit run are concatenated byte for byte. Either way the merged
// file is written to "<name>.merge.tmp" first and then moved into place.
package restore
