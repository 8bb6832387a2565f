package diffraction

import (
	"strings"

	"github.com/phil-mansfield/xtal/crystal"
)

func even(n int) bool { return n%2 == 0 }

// IsAbsent returns true if (h, k, l) is systematically absent because of the
// lattice centring or the glide planes and screw axes of a recognized space
// group. Space groups without rules only use the centring.
func IsAbsent(s *crystal.Structure, h, k, l int) bool {
	if centringAbsent(s.Centring(), h, k, l) {
		return true
	}
	rule, ok := groupRules[normalizeGroup(s.SpaceGroup)]
	return ok && rule(h, k, l)
}

func centringAbsent(c byte, h, k, l int) bool {
	switch c {
	case 'F':
		return !(even(h) == even(k) && even(k) == even(l))
	case 'I':
		return !even(h + k + l)
	case 'C':
		return !even(h + k)
	case 'A':
		return !even(k + l)
	case 'B':
		return !even(h + l)
	}
	return false
}

// groupRules holds the extinction conditions of specific space groups beyond
// their centring, keyed by normalized Hermann-Mauguin symbol.
var groupRules = map[string]func(h, k, l int) bool{
	"pbca":     pbcaAbsent,
	"fd-3m":    diamondAbsent,
	"fd3m":     diamondAbsent,
	"p4_2/mnm": rutileAbsent,
	"p42/mnm":  rutileAbsent,
	"p2_1/c":   monoclinicAbsent,
	"p21/c":    monoclinicAbsent,
}

func normalizeGroup(sg string) string {
	return strings.ToLower(strings.Join(strings.Fields(sg), ""))
}

// pbcaAbsent: 0kl k = 2n, h0l l = 2n, hk0 h = 2n. The axial conditions
// follow from these.
func pbcaAbsent(h, k, l int) bool {
	switch {
	case h == 0 && !even(k):
		return true
	case k == 0 && !even(l):
		return true
	case l == 0 && !even(h):
		return true
	}
	return false
}

// diamondAbsent: hkl all even with h + k + l = 4n + 2. The F-centring rule
// is applied separately.
func diamondAbsent(h, k, l int) bool {
	if !(even(h) && even(k) && even(l)) {
		return false
	}
	return (h+k+l)%4 != 0
}

// rutileAbsent: 0kl k + l = 2n and, by the fourfold axis, h0l h + l = 2n.
// h00 h = 2n and 00l l = 2n are special cases of these.
func rutileAbsent(h, k, l int) bool {
	return (h == 0 && !even(k+l)) || (k == 0 && !even(h+l))
}

// monoclinicAbsent: h0l l = 2n, 0k0 k = 2n.
func monoclinicAbsent(h, k, l int) bool {
	switch {
	case k == 0 && !even(l):
		return true
	case h == 0 && l == 0 && !even(k):
		return true
	}
	return false
}
