package util

// MaskHostname keeps the first two characters of a hostname so run
// summaries can be shared without identifying the machine.
func MaskHostname(hostname string) string {
	switch len(hostname) {
	case 0:
		return "srv-****"
	case 1:
		return "srv-" + hostname + "***"
	default:
		return "srv-" + hostname[:2] + "**"
	}
}
