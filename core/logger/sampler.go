package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// debugSampler lets through the first keep of every window events.
// A zero window disables sampling.
type debugSampler struct {
	keep   atomic.Uint64
	window atomic.Uint64
	seen   atomic.Uint64
}

func (s *debugSampler) set(keep, window int) {
	if keep <= 0 || window <= 0 {
		keep, window = 0, 0
	}
	if keep > window {
		keep = window
	}
	s.keep.Store(uint64(keep))
	s.window.Store(uint64(window))
	s.seen.Store(0)
}

func (s *debugSampler) allow() bool {
	window := s.window.Load()
	if window == 0 {
		return true
	}
	n := s.seen.Add(1) - 1
	return n%window < s.keep.Load()
}

// parseSampleSpec reads "keep/window", a bare window ("50" means 1/50),
// or "off"/"all" which disable sampling.
func parseSampleSpec(spec string) (int, int, bool) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "":
		return 0, 0, false
	case "off", "all", "0":
		return 0, 0, true
	}
	if keep, window, ok := strings.Cut(spec, "/"); ok {
		k, err1 := strconv.Atoi(strings.TrimSpace(keep))
		w, err2 := strconv.Atoi(strings.TrimSpace(window))
		if err1 != nil || err2 != nil || k <= 0 || w <= 0 {
			return 0, 0, false
		}
		return k, w, true
	}
	w, err := strconv.Atoi(spec)
	if err != nil || w <= 0 {
		return 0, 0, false
	}
	return 1, w, true
}
