// Package logs reads the JSON log file written by the splicer logger.
//
// Tail returns the last lines of the file together with the byte offset where
// reading stopped; Follow polls from that offset so `splicer logs --follow`
// can stream new records until its context ends. Records can be narrowed to
// one job through a Filter.
package logs
