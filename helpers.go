package forgez

import (
	"fmt"
	"strconv"
)

// itoa and boolString exist only to keep span tag construction
// allocation-light and dependency-free in the hot StartProcessing/
// WaitForCompletion path, mirroring the fmt.Sprintf("%t", ...) /
// strconv-flavored tag formatting scattered through the teacher's
// connectors (e.g. filter.go's FilterTagConditionMet).
func itoa(n int) string {
	return strconv.Itoa(n)
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

// stringify renders an arbitrary recovered panic value for a capitan
// field, without pulling in fmt at every call site.
func stringify(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
