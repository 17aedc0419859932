package notification

import (
	"net/url"
	"strings"
)

// messagingHost is the deep-link host for the external messaging channel
const messagingHost = "wa.me"

// DeepLink builds the channel deep link for a normalized phone number and a
// pre-built message. The message is percent-encoded UTF-8 (emoji and
// newlines included); spaces use %20 rather than '+' because the path after
// the link leaves our control once the channel app parses it.
func DeepLink(phoneDigits, message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://" + messagingHost + "/" + phoneDigits + "?text=" + encoded
}
