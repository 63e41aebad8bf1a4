package services

import "testing"

func TestNormalizeIngredientKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"Chicken Breast", "chicken_breast"},
		{"  Olive Oil ", "olive_oil"},
		{"Brown Rice (cooked)", "brown_rice_cooked"},
		{"Eggs", "eggs"},
		{"Crème Fraîche", "crme_frache"},
		{"2% Milk", "2_milk"},
	}
	for _, tc := range cases {
		if got := NormalizeIngredientKey(tc.in); got != tc.want {
			t.Fatalf("NormalizeIngredientKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseAmountNumericPrefix(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in    string
		value float64
		unit  string
	}{
		{"200 g", 200, "g"},
		{"200g", 200, "g"},
		{"1.5 cups", 1.5, "cups"},
		{"2", 2, ""},
	}
	for _, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if !ok {
			t.Fatalf("ParseAmount(%q) unexpectedly failed", tc.in)
		}
		if got.Value != tc.value || got.Unit != tc.unit {
			t.Fatalf("ParseAmount(%q) = %+v, want {%v %q}", tc.in, got, tc.value, tc.unit)
		}
	}
}

func TestParseAmountRejectsNonNumeric(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "to taste", "a pinch", "1 1/2 cups"} {
		if _, ok := ParseAmount(in); ok {
			t.Fatalf("ParseAmount(%q) should not parse", in)
		}
	}
}

func TestFormatAmountTrimsTrailingZero(t *testing.T) {
	t.Parallel()
	cases := []struct {
		value float64
		unit  string
		want  string
	}{
		{200, "g", "200 g"},
		{1.5, "cups", "1.5 cups"},
		{3, "pcs", "3 pcs"},
		{0.5, "kg", "0.5 kg"},
		{2, "", "2"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.value, tc.unit); got != tc.want {
			t.Fatalf("FormatAmount(%v, %q) = %q, want %q", tc.value, tc.unit, got, tc.want)
		}
	}
}
