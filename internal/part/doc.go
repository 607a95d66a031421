// Package part names, parses, and discovers the part files of a split.
//
// Every part name has the shape "<prefix>part-<NNN><suffix>", where NNN is
// a zero-padded 1-based index at least three digits wide:
//
//	part.ArchivedPartName("movie.mkv", 2, 3) // "movie.mkv.part-002.zip"
//	part.RawPartName("movie.mkv", 2, 3)      // "movie.mkv.zip.part-002"
//
// Parsing splits at the last "part-" marker, so prefixes may themselves
// contain the marker. Discover groups files by (prefix, suffix) and checks
// that the indices run 1..N without gaps or duplicates.
package part
