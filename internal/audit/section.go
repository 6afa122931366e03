package audit

import (
	"github.com/rs/zerolog"
)

// section is a nested dictionary that only appears in the entry once
// something has been written to it.
type section struct {
	dict  *zerolog.Event
	empty bool
}

func newSection() *section {
	return &section{dict: zerolog.Dict(), empty: true}
}

func (s *section) str(key, val string) *section {
	if val != "" {
		s.dict.Str(key, val)
		s.empty = false
	}
	return s
}

func (s *section) objects(key string, vals []UpstreamCall) *section {
	if len(vals) == 0 {
		return s
	}

	arr := zerolog.Arr()
	for _, v := range vals {
		arr.Object(v)
	}
	s.dict.Array(key, arr)
	s.empty = false

	return s
}

// attach adds the section to parent under key unless it is empty.
func (s *section) attach(parent *zerolog.Event, key string) {
	if !s.empty {
		parent.Dict(key, s.dict)
	}
}
