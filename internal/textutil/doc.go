// Package textutil provides the lexical half of the hybrid similarity
// score: Unicode-aware tokenization and a token-set overlap ratio that is
// robust to word reordering between two renditions of the same line.
package textutil
