package util

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// StringListContains returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// ContainsControlCharacter returns true if str contains a Unicode
// control character. We use this to reject player names and file
// names that would end up in object keys or form fields.
func ContainsControlCharacter(str string) bool {
	for _, r := range str {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// LowerExtension returns the lower-case extension of fileName,
// including the leading dot, or an empty string.
func LowerExtension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// PlayerFolder returns the storage subfolder for a player, replacing
// spaces in the name with underscores. For example, "John Doe" and 23
// become "John_Doe_23".
func PlayerFolder(playerName string, playerNumber int) string {
	name := strings.Join(strings.Fields(playerName), "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%s_%d", name, playerNumber)
}

// HumanSize formats a byte count the way the form displays file sizes,
// e.g. "12.50 MB".
func HumanSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
