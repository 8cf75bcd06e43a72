// Package html normalises HTML pages into plain text using the
// golang.org/x/net/html tokenizer.
package html
