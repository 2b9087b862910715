// Package transform rewrites exported directory entries before they are
// imported into the destination directory.
package transform

import "strings"

// Attribute lines handled by the load-balancing rewrite.
const (
	mailHostAttr     = "zimbraMailHost:"
	transportAttr    = "zimbraMailTransport:"
	childVisibleAttr = "zimbraPrefChildVisibleAccount:"
)

// RewriteForStore rewrites a raw directory entry so the account lands on the
// given target store: the mail-host line is pointed at the store, the
// transport line at the store's LMTP endpoint, and the legacy
// child-visible-account attribute is dropped because replicating it corrupts
// the destination entry. All other lines pass through in their original order.
func RewriteForStore(entry, targetStore string) string {
	lines := strings.Split(entry, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, mailHostAttr):
			out = append(out, mailHostAttr+" "+targetStore)
		case strings.HasPrefix(line, transportAttr):
			out = append(out, transportAttr+" lmtp:"+targetStore+":7025")
		case strings.HasPrefix(line, childVisibleAttr):
			// dropped
		default:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}
