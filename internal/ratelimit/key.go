package ratelimit

import (
	"fmt"
	"strings"
)

// LoginKey builds the limiter key for an authentication attempt. Keyed by
// client address and the claimed username, so one source cannot exhaust
// another user's budget and a distributed guess on one account still trips.
func LoginKey(clientIP, username string) string {
	clientIP = strings.TrimSpace(clientIP)
	username = strings.ToLower(strings.TrimSpace(username))
	if clientIP == "" && username == "" {
		return ""
	}
	return fmt.Sprintf("ip:%s:u:%s", clientIP, username)
}
