package cli

import (
	"strings"
)

// StringList is a flag that can be given more than once, e.g.
// -player-image a.jpg -player-image b.jpg.
type StringList []string

func (list *StringList) String() string {
	if list == nil {
		return ""
	}
	return strings.Join(*list, ",")
}

func (list *StringList) Set(value string) error {
	*list = append(*list, value)
	return nil
}
