package convo

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsConnectivity reports whether err looks like a network reachability
// failure rather than an API-level rejection. Connectivity failures
// flip the head into its offline behavior instead of aborting.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
