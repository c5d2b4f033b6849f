package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LeBron James", "lebron_james"},
		{"Topps Chrome", "topps_chrome"},
		{"4/102", "4_102"},
		{"  Ken Griffey Jr.  ", "ken_griffey_jr"},
		{"Shaquille O'Neal", "shaquille_o_neal"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeKey(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalKeyDeterministic(t *testing.T) {
	a := CanonicalKey("2003", "Topps Chrome", "LeBron James", "111")
	b := CanonicalKey("2003", "topps chrome", "LEBRON JAMES", "111")
	assert.Equal(t, "2003_topps_chrome_lebron_james_111", a)
	assert.Equal(t, a, b)
}

func TestCanonicalKeySkipsEmptyFields(t *testing.T) {
	assert.Equal(t, "base_set_charizard_4_102", CanonicalKey("", "Base Set", "Charizard", "4/102"))
	assert.Equal(t, "", CanonicalKey("", "", "", ""))
}

func TestCardQueryKey(t *testing.T) {
	q := CardQuery{
		Category:   "Basketball",
		Player:     "LeBron James",
		Year:       "2003",
		SetName:    "Topps Chrome",
		CardNumber: "111",
	}
	assert.Equal(t, "2003_topps_chrome_lebron_james_111", q.Key())
}
