package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// capacityFields is the normalized output of capacity parsing. Zero
// means absent.
type capacityFields struct {
	FlowM3h  float64
	FlowNm3h float64
	VolumeM3 float64
	HeadM    float64
	P1Bar    float64
	P2Bar    float64
	WPerM3   float64
}

func (f capacityFields) empty() bool {
	return f == capacityFields{}
}

// Pattern priority is fixed: the first match wins, so a string like
// "120 m3/hr @ 15 m w.c." never falls through to the bare-flow rule.
var (
	reFlowAtHead = regexp.MustCompile(`(?i)([\d.]+)\s*m3/hr?\s*@\s*([\d.]+)\s*m\s*w\.?c\.?`)
	reFlowAtBar  = regexp.MustCompile(`(?i)([\d.]+)\s*m3/hr?\s*@\s*([\d.]+)\s*bar\s*g?`)
	reFlowNm3h   = regexp.MustCompile(`([\d.]+)\s*[Nn]m3/hr?`)
	reFlowM3day  = regexp.MustCompile(`(?i)([\d.]+)\s*m3/d(?:ay)?`)
	reFlowM3h    = regexp.MustCompile(`(?i)([\d.]+)\s*m3/hr?`)
	reVolumeM3   = regexp.MustCompile(`(?i)([\d.]+)\s*m3`)
)

// parseCapacity parses a free-text capacity string ("120 m3/hr @ 15 m
// w.c.", "2500 Nm3/hr", "450 m3") into structured fields. Unknown text
// yields the empty result.
func parseCapacity(text string) capacityFields {
	text = strings.TrimSpace(text)
	if text == "" {
		return capacityFields{}
	}

	if m := reFlowAtHead.FindStringSubmatch(text); m != nil {
		return capacityFields{FlowM3h: parseNum(m[1]), HeadM: parseNum(m[2])}
	}
	if m := reFlowAtBar.FindStringSubmatch(text); m != nil {
		return capacityFields{
			FlowM3h: parseNum(m[1]),
			P1Bar:   1.013,
			P2Bar:   1.013 + parseNum(m[2]),
		}
	}
	if m := reFlowNm3h.FindStringSubmatch(text); m != nil {
		return capacityFields{FlowNm3h: parseNum(m[1])}
	}
	if m := reFlowM3day.FindStringSubmatch(text); m != nil {
		return capacityFields{FlowM3h: parseNum(m[1]) / 24}
	}
	if m := reFlowM3h.FindStringSubmatch(text); m != nil {
		return capacityFields{FlowM3h: parseNum(m[1])}
	}
	// Bare volume, but only when the "m3" is not the start of a rate
	// unit like "m3/...".
	if loc := reVolumeM3.FindStringSubmatchIndex(text); loc != nil {
		rest := strings.TrimLeft(text[loc[1]:], " ")
		if !strings.HasPrefix(rest, "/") {
			return capacityFields{VolumeM3: parseNum(text[loc[2]:loc[3]])}
		}
	}

	return capacityFields{}
}

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return 0
	}
	return v
}
