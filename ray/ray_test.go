package ray

import (
	"math"
	"testing"

	"spheretrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestEval(t *testing.T) {
	testCases := []struct {
		desc  string
		ray   Ray
		param float64
		want  vec3.T
	}{
		{
			desc:  "origin at zero",
			ray:   Ray{Point: vec3.T{1, 2, 3}, Slope: vec3.T{1, 0, 0}},
			param: 0,
			want:  vec3.T{1, 2, 3},
		},
		{
			desc:  "scaled slope",
			ray:   Ray{Point: vec3.T{0, 0, 0}, Slope: vec3.T{2, 3, 4}},
			param: 2,
			want:  vec3.T{4, 6, 8},
		},
		{
			desc:  "negative parameter",
			ray:   Ray{Point: vec3.T{5, 5, 5}, Slope: vec3.T{-1, -1, -1}},
			param: -2,
			want:  vec3.T{7, 7, 7},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			before := tc.ray
			got := tc.ray.Eval(tc.param)
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Eval(%v) bad result; diff (-got +want)\n%s", tc.param, diff)
			}
			if diff := cmp.Diff(tc.ray, before); diff != "" {
				t.Errorf("Eval mutated the ray; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestSpanContainsIsOpen(t *testing.T) {
	s := Span{Lo: 0.001, Hi: 10}
	testCases := []struct {
		t    float64
		want bool
	}{
		{0.001, false},
		{0.0011, true},
		{5, true},
		{10, false},
		{-1, false},
		{math.NaN(), false},
	}
	for _, tc := range testCases {
		if got := s.Contains(tc.t); got != tc.want {
			t.Errorf("Span%v.Contains(%v) = %v, want %v", s, tc.t, got, tc.want)
		}
	}

	if !(Span{Lo: 0, Hi: math.Inf(1)}).Contains(1e300) {
		t.Errorf("unbounded span should contain large parameters")
	}
}
