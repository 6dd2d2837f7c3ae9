// FILE: lixenwraith/compose/validate.go
package compose

// DefaultTypeKey is the reserved key holding a configuration's type tag
const DefaultTypeKey = "type"

// Validate checks that every configuration carries a string tag under key that
// is a member of allowed. It stops at the first offender and returns a
// *ConfigTypeError for it. An empty allowed set disables the check.
func Validate(configs []*Configuration, allowed []string, key string) error {
	if len(allowed) == 0 {
		return nil
	}
	if key == "" {
		key = DefaultTypeKey
	}

	set := make(map[string]struct{}, len(allowed))
	for _, t := range allowed {
		set[t] = struct{}{}
	}

	for i, cfg := range configs {
		tag, isString := cfg.Type(key)
		if isString {
			if _, ok := set[tag]; ok {
				continue
			}
		}

		value, present := cfg.data[key]
		return &ConfigTypeError{
			Index:   i,
			Key:     key,
			Value:   value,
			Present: present,
			Allowed: append([]string(nil), allowed...),
		}
	}

	return nil
}
