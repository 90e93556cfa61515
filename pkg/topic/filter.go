package topic

import (
	"fmt"
	"regexp"
	"strings"
)

var filterRegex = regexp.MustCompile(`^(([^+#]*|\+)(/([^+#]*|\+))*(/#)?|#)$`)

// Filter selects topic names. "+" matches exactly one level and a trailing
// "#" matches any number of remaining levels, including none.
type Filter struct {
	value string
}

func NewFilter(value string) (*Filter, error) {
	if value == "" {
		return nil, fmt.Errorf("topic filter: cannot be empty")
	}

	if len(value) > MaxLength {
		return nil, fmt.Errorf("topic filter: %.32s... cannot have more than %d bytes", value, MaxLength)
	}

	if !filterRegex.MatchString(value) {
		return nil, fmt.Errorf("topic filter: %s format is invalid", value)
	}

	return &Filter{value}, nil
}

func (f *Filter) String() string {
	return f.value
}

func (f *Filter) Match(name *Name) bool {
	filterLevels := strings.Split(f.value, separator)
	nameLevels := name.levels()

	if name.IsServerSpecific() && filterLevels[0] != nameLevels[0] {
		return false
	}

	for i, level := range filterLevels {
		if level == multiLevelWildcard {
			return true
		}

		if i >= len(nameLevels) {
			return false
		}

		if level != singleLevelWildcard && level != nameLevels[i] {
			return false
		}
	}

	return len(filterLevels) == len(nameLevels)
}
