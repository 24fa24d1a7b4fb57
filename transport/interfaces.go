package transport

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// Interface enumeration is comparatively expensive on some platforms, so
// the results are cached after the first call. RefreshInterfaces drops the
// cache, e.g. after a network change notification.

var (
	ifMu        sync.Mutex
	ifCache     []net.Interface
	ifAddrCache []net.IP
	ifCached    bool
)

func fillIfCacheLocked() error {
	ifs, err := net.Interfaces()
	if err != nil {
		return err
	}
	ifCache = ifCache[:0]
	ifAddrCache = ifAddrCache[:0]
	for _, ifi := range ifs {
		if ifi.Flags&net.FlagUp == 0 {
			continue
		}
		if ifi.Flags&net.FlagMulticast != 0 {
			ifCache = append(ifCache, ifi)
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":  "fillIfCache",
				"interface": ifi.Name,
				"error":     err.Error(),
			}).Warn("Could not enumerate interface addresses")
			continue
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				ifAddrCache = append(ifAddrCache, ipn.IP)
			}
		}
	}
	ifCached = true
	return nil
}

// MulticastInterfaces returns all up, multicast-capable local interfaces.
func MulticastInterfaces() ([]net.Interface, error) {
	ifMu.Lock()
	defer ifMu.Unlock()
	if !ifCached {
		if err := fillIfCacheLocked(); err != nil {
			return nil, err
		}
	}
	out := make([]net.Interface, len(ifCache))
	copy(out, ifCache)
	return out, nil
}

// LocalAddresses returns all unicast addresses assigned to up local
// interfaces.
func LocalAddresses() ([]net.IP, error) {
	ifMu.Lock()
	defer ifMu.Unlock()
	if !ifCached {
		if err := fillIfCacheLocked(); err != nil {
			return nil, err
		}
	}
	out := make([]net.IP, len(ifAddrCache))
	copy(out, ifAddrCache)
	return out, nil
}

// RefreshInterfaces invalidates the interface cache so the next enumeration
// hits the OS again.
func RefreshInterfaces() {
	ifMu.Lock()
	ifCached = false
	ifMu.Unlock()
}
