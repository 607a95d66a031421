// Package archive reads and writes the zip containers used for parts and
// packed directories.
//
// Writing without a password goes through klauspost/compress, which lets
// each Writer pick its own deflate level. Writing with a password goes
// through alexmullins/zip, which encrypts entries with WinZip AES-256;
// that writer always deflates at the library default level. Reading is
// done with alexmullins/zip for both kinds so that encrypted and plain
// containers share one code path.
//
// Opening an entry maps library failures onto the sentinel errors of
// this package:
//
//	r, err := archive.Open("movie.mkv.part-001.zip", password)
//	entry, err := r.SingleEntry()
//	rc, err := entry.Open()
//	if errors.Is(err, archive.ErrWrongPassword) {
//	    // ask again
//	}
package archive
