// Package retrieval implements the TF-IDF vector-space model used to rank
// corpus documents against free-text queries.
//
// An [Index] is built once from an ordered slice of texts and is immutable
// afterwards, so a single instance may be searched from any number of
// goroutines without coordination.
package retrieval

// Tokenize splits text into lowercase alphanumeric tokens.
// Any byte outside [A-Za-z0-9] is a separator. Case folding is ASCII-only so
// the result does not depend on the process locale.
func Tokenize(text string) []string {
	var tokens []string
	buf := make([]byte, 0, 16)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			buf = append(buf, c)
		case c >= 'A' && c <= 'Z':
			buf = append(buf, c+('a'-'A'))
		default:
			if len(buf) > 0 {
				tokens = append(tokens, string(buf))
				buf = buf[:0]
			}
		}
	}
	if len(buf) > 0 {
		tokens = append(tokens, string(buf))
	}
	return tokens
}
