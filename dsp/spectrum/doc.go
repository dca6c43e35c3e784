// Package spectrum provides FFT-based analysis helpers used to inspect and
// verify stretched audio.
//
// Nothing in this package feeds back into the stretch path; it reports on
// signals, it never resynthesizes them.
package spectrum
