package platform

import (
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// NameCache remembers display names for app ids seen this session and
// falls back to a process table scan for ids it has not seen.
type NameCache struct {
	mu    sync.Mutex
	names map[string]string

	// processNames lists running process names; replaced in tests.
	processNames func() []string
}

// NewNameCache returns an empty cache backed by the live process table.
func NewNameCache() *NameCache {
	return &NameCache{
		names:        make(map[string]string),
		processNames: runningProcessNames,
	}
}

// Remember records name for appID.
func (c *NameCache) Remember(appID, name string) {
	appID = strings.TrimSpace(appID)
	name = strings.TrimSpace(name)
	if appID == "" || name == "" {
		return
	}
	c.mu.Lock()
	c.names[appID] = name
	c.mu.Unlock()
}

// DisplayName returns the remembered name for appID, or the name of a
// running process whose name matches appID case-insensitively.
func (c *NameCache) DisplayName(appID string) (string, bool) {
	c.mu.Lock()
	name, ok := c.names[appID]
	c.mu.Unlock()
	if ok {
		return name, true
	}

	if c.processNames == nil {
		return "", false
	}
	want := strings.ToLower(appID)
	// Reverse-DNS ids match on their last label.
	if i := strings.LastIndex(want, "."); i >= 0 && i < len(want)-1 {
		want = want[i+1:]
	}
	for _, proc := range c.processNames() {
		if strings.ToLower(proc) == want {
			c.Remember(appID, proc)
			return proc, true
		}
	}
	return "", false
}

// ProcessName returns the executable name for pid, empty when unknown.
func ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil {
		return ""
	}
	return name
}

func runningProcessNames() []string {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		if name, err := p.Name(); err == nil && name != "" {
			names = append(names, name)
		}
	}
	return names
}
