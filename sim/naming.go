package sim

import (
	"log"
	"strconv"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name is not a dot-separated list of
// capitalized elements, each optionally followed by bracketed indices, such
// as "Tile[3].CacheEngine".
func NameMustBeValid(name string) {
	for _, elem := range strings.Split(name, ".") {
		if err := elemValid(elem); err != "" {
			log.Panicf("name %q is not valid: %s", name, err)
		}
	}
}

func elemValid(elem string) string {
	base, rest, hasIndex := strings.Cut(elem, "[")
	if base == "" {
		return "element must not be empty"
	}

	if base[0] < 'A' || base[0] > 'Z' {
		return "element must start with a capital letter"
	}

	if strings.ContainsAny(base, "_\"'- ]") {
		return "element contains an invalid character"
	}

	if !hasIndex {
		return ""
	}

	for _, idx := range strings.Split(rest, "[") {
		if !strings.HasSuffix(idx, "]") {
			return "brackets must match"
		}

		if _, err := strconv.Atoi(strings.TrimSuffix(idx, "]")); err != nil {
			return "index must be an integer"
		}
	}

	return ""
}

// BuildName joins a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name such as "Parent.Elem[3]".
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}
