package utils

import (
	"os"
	"strings"
	"sync"
)

// hostEnvVars are checked in order before asking the kernel, so replicas
// behind an orchestrator log under their pod or instance name.
var hostEnvVars = []string{"POD_NAME", "HOSTNAME"}

var (
	hostName string
	hostOnce sync.Once
)

// GetHost returns the name this process logs under, resolved once.
func GetHost() string {
	hostOnce.Do(func() {
		hostName = resolveHost(os.Getenv, os.Hostname)
	})
	return hostName
}

func resolveHost(getenv func(string) string, hostname func() (string, error)) string {
	for _, key := range hostEnvVars {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
	}
	if h, err := hostname(); err == nil && h != "" {
		return h
	}
	return "unknown"
}
