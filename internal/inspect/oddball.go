package inspect

import (
	"fmt"
	"math"

	"github.com/dgallion1/wirecheck/internal/doctree"
)

// MinSamples is the fewest documents that can establish a majority.
const MinSamples = 3

type sample struct {
	path  string
	value int
}

// attribute reads one landmark coordinate from a Record. ok is false when
// the landmark is absent or sits at 0.
type attribute struct {
	name string
	read func(r doctree.Record) (int, bool)
}

var oddballAttributes = []attribute{
	{"title_y", func(r doctree.Record) (int, bool) {
		if r.Title == nil {
			return 0, false
		}
		return r.Title.Y, r.Title.Y != 0
	}},
	{"title_x", func(r doctree.Record) (int, bool) {
		if r.Title == nil || !r.Title.HasX {
			return 0, false
		}
		return r.Title.X, r.Title.X != 0
	}},
	{"signature_y", func(r doctree.Record) (int, bool) {
		if r.Signature == nil {
			return 0, false
		}
		return r.Signature.Y, r.Signature.Y != 0
	}},
	{"desktop_x", originX(func(r doctree.Record) *doctree.Origin { return r.Desktop })},
	{"mobile_x", originX(func(r doctree.Record) *doctree.Origin { return r.Mobile })},
	{"annotation_y", func(r doctree.Record) (int, bool) {
		if r.Annotations == nil {
			return 0, false
		}
		return r.Annotations.Y, r.Annotations.Y != 0
	}},
}

func originX(get func(doctree.Record) *doctree.Origin) func(doctree.Record) (int, bool) {
	return func(r doctree.Record) (int, bool) {
		o := get(r)
		if o == nil {
			return 0, false
		}
		return o.X, o.X != 0
	}
}

// FindOddballs flags documents whose landmark coordinates fall outside the
// corpus majority. Values are bucketed to the nearest multiple of tolerance
// (ties to even). An attribute with fewer than MinSamples values, or with
// no bucket holding a strict majority, yields nothing.
func FindOddballs(docs []*doctree.Document, tolerance int) []PatternViolation {
	if tolerance <= 0 {
		tolerance = 10
	}
	var out []PatternViolation
	for _, attr := range oddballAttributes {
		var samples []sample
		for _, d := range docs {
			if v, ok := attr.read(d.Record); ok {
				samples = append(samples, sample{d.Path, v})
			}
		}
		out = append(out, outliers(attr.name, samples, tolerance)...)
	}
	return out
}

func bucket(v, tolerance int) int {
	return int(math.RoundToEven(float64(v)/float64(tolerance))) * tolerance
}

func outliers(name string, samples []sample, tolerance int) []PatternViolation {
	if len(samples) < MinSamples {
		return nil
	}
	counts := map[int]int{}
	for _, s := range samples {
		counts[bucket(s.value, tolerance)]++
	}
	mode, modeCount := 0, 0
	for b, n := range counts {
		if n > modeCount {
			mode, modeCount = b, n
		}
	}
	if modeCount*2 <= len(samples) {
		return nil
	}

	var out []PatternViolation
	for _, s := range samples {
		if bucket(s.value, tolerance) == mode {
			continue
		}
		out = append(out, PatternViolation{
			Path:     s.path,
			Check:    name + "_oddball",
			Expected: fmt.Sprintf("majority pattern: %d", mode),
			Actual:   fmt.Sprintf("this SVG: %d", s.value),
		})
	}
	return out
}
