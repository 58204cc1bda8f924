package vcdtrace

import (
	"fmt"
	"strconv"
)

// Timescale is the (magnitude, unit) pair a $timescale directive declares.
type Timescale struct {
	Magnitude int
	Unit      string
}

func parseTimescale(s string) (Timescale, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return Timescale{}, fmt.Errorf("vcdtrace: malformed timescale %q", s)
	}
	mag, err := strconv.Atoi(s[:i])
	if err != nil {
		return Timescale{}, err
	}
	return Timescale{Magnitude: mag, Unit: s[i:]}, nil
}
