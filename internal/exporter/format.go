package exporter

import "strings"

// sheetName trims a dataset name to the 31 characters a sheet name allows
// and strips the characters Excel rejects.
func sheetName(name string) string {
	replacer := strings.NewReplacer(
		":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
	)
	name = replacer.Replace(name)
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}
