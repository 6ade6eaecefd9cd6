// Package netx has address helpers for keeping the daemon on the local host.
package netx

import (
	"fmt"
	"net"
	"strings"
)

// IsLoopbackHost reports whether host is "localhost" or a loopback IP.
func IsLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// IsLoopbackAddr reports whether a host:port address names a loopback host.
func IsLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	return IsLoopbackHost(host)
}

// CheckListenAddr rejects listen addresses that are not bound to loopback,
// including the empty host which means every interface.
func CheckListenAddr(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("listen address %q: %w", addr, err)
	}
	if !IsLoopbackHost(host) {
		return fmt.Errorf("listen address %q is not a loopback address", addr)
	}
	return nil
}
