package util

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GenerateUniqueFilename keeps the extension of originalFilename and suffixes the base
// name with a nanosecond timestamp.
func GenerateUniqueFilename(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := filepath.Base(originalFilename)
	name = strings.TrimSuffix(name, ext)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	return name + "_" + timestamp + ext
}
