package core

import (
	"fmt"
	"strings"
)

// Backend selects the GPU API the engine is created with.
type Backend int

const (
	// BackendDefault lets the engine pick; it resolves to OpenGL.
	BackendDefault Backend = iota
	BackendOpenGL
	BackendVulkan
	BackendMetal
)

func (b Backend) String() string {
	switch b {
	case BackendDefault:
		return "default"
	case BackendOpenGL:
		return "opengl"
	case BackendVulkan:
		return "vulkan"
	case BackendMetal:
		return "metal"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend maps a command-line API name to a Backend.
// Only the exact lowercase names are accepted.
func ParseBackend(name string) (Backend, bool) {
	switch name {
	case "opengl":
		return BackendOpenGL, true
	case "vulkan":
		return BackendVulkan, true
	case "metal":
		return BackendMetal, true
	}
	return BackendDefault, false
}

// BackendNames lists the names ParseBackend accepts, in display order.
func BackendNames() []string {
	return []string{"opengl", "vulkan", "metal"}
}

// QuotedBackendNames renders the accepted names as 'a'|'b'|'c'.
func QuotedBackendNames() string {
	names := BackendNames()
	for i, n := range names {
		names[i] = "'" + n + "'"
	}
	return strings.Join(names, "|")
}

// Config is the application configuration. It is filled once at startup
// from the command line and treated as read-only afterwards.
type Config struct {
	Title        string
	IBLDirectory string
	Scale        float32
	SplitView    bool
	Backend      Backend

	Width     int
	Height    int
	Resizable bool
	VSync     bool
}

// DefaultConfig returns the configuration used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Title:     "Material Sandbox",
		Scale:     1.0,
		Backend:   BackendDefault,
		Width:     1024,
		Height:    640,
		Resizable: true,
		VSync:     true,
	}
}
