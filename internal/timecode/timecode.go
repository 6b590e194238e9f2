// Package timecode converts transcript time labels ("1:02:03", "2:05") to
// seconds and back.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts an "H:MM:SS" or "M:SS" label to seconds. An empty part
// counts as zero. Any other shape, or a part that is not a number, yields 0.
func Parse(label string) int {
	parts := strings.Split(strings.TrimSpace(label), ":")

	nums := make([]int, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1]
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	default:
		return 0
	}
}

// Format renders seconds as "M:SS". Minutes are not folded into hours,
// so 3723 seconds renders as "62:03".
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	minutes := int(math.Floor(seconds / 60))
	rest := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, rest)
}
