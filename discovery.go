// FILE: lixenwraith/compose/discovery.go
package compose

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions configures where relative file identifiers are searched for
type DiscoveryOptions struct {
	// Name of the application, used for XDG subdirectories
	Name string

	// Custom search paths, tried first
	Paths []string

	// EnvVar names an environment variable holding an extra directory, tried after Paths
	EnvVar string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		EnvVar:        strings.ToUpper(appName) + "_CONFIG_DIR",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// SearchPaths returns the ordered directory list described by the options.
// Directories are returned whether or not they exist.
func (o DiscoveryOptions) SearchPaths() []string {
	var searchPaths []string

	searchPaths = append(searchPaths, o.Paths...)

	if o.EnvVar != "" {
		if dir := os.Getenv(o.EnvVar); dir != "" {
			searchPaths = append(searchPaths, dir)
		}
	}

	if o.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if o.UseXDG && o.Name != "" {
		searchPaths = append(searchPaths, getXDGConfigPaths(o.Name)...)
	}

	return searchPaths
}

// DefaultSearchPaths is DefaultDiscoveryOptions(appName).SearchPaths()
func DefaultSearchPaths(appName string) []string {
	return DefaultDiscoveryOptions(appName).SearchPaths()
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
