// Package analytics derives chart series, summary statistics, sentiment
// classes and emotional peaks from a finished analysis. Everything here is a
// pure function of the result; nothing is cached between calls.
package analytics
