// Package normalisers turns files into plain text for chunking.
//
// Each sub-package handles one family of formats and claims file
// extensions. The Registry picks the highest-priority normaliser for a
// file name.
package normalisers
