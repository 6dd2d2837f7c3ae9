// File: lixenwraith/compose/convenience.go
package compose

import (
	"fmt"
)

// GetConfigurations reads the files named by ids (each with ".yaml" in place
// of any suffix), merges later files over earlier ones and returns one
// configuration per combination of their documents. When types is non-empty
// every configuration must carry a "type" tag from it.
//
// This is the recommended entry point for most programs:
//
//	configs, err := compose.GetConfigurations(
//	    append([]string{"defaults"}, os.Args[1:]...), []string{"myprog"}, compose.VerbositySummary)
func GetConfigurations(ids []string, types []string, verbosity Verbosity) ([]*Configuration, error) {
	return New().GetConfigurations(ids, types, verbosity)
}

// MustGetConfigurations is like GetConfigurations but panics on error
func MustGetConfigurations(ids []string, types []string, verbosity Verbosity) []*Configuration {
	configs, err := GetConfigurations(ids, types, verbosity)
	if err != nil {
		panic(fmt.Sprintf("configuration load failed: %v", err))
	}
	return configs
}

// GetConfiguration is GetConfigurations for callers that expect exactly one
// combination. Any other count is an error.
func GetConfiguration(ids []string, types []string, verbosity Verbosity) (*Configuration, error) {
	configs, err := GetConfigurations(ids, types, verbosity)
	if err != nil {
		return nil, err
	}
	if len(configs) != 1 {
		return nil, fmt.Errorf("expected exactly one configuration, resolved %d", len(configs))
	}
	return configs[0], nil
}
