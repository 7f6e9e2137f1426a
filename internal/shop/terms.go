package shop

import (
	"regexp"
	"strconv"
	"strings"
)

// Unset marks a price that the sign does not configure.
const Unset = -1

var (
	buyPattern    = regexp.MustCompile(`(?i)^buy\s+(?:for\s+)?(\d+)$`)
	sellPattern   = regexp.MustCompile(`(?i)^sell\s+(?:for\s+)?(\d+)$`)
	amountPattern = regexp.MustCompile(`(?i)^amount\s+(\d+)$`)
)

// Terms are the prices and quantity parsed from a sign.
type Terms struct {
	BuyPrice  int
	SellPrice int
	Amount    int
}

func defaultTerms() Terms {
	return Terms{BuyPrice: Unset, SellPrice: Unset, Amount: 1}
}

// ParseTerms reads the lines following the header. Lines matching none of
// the buy, sell or amount forms are ignored. On error the returned terms
// are the defaults.
func ParseTerms(lines []string) (Terms, error) {
	t := defaultTerms()
	var seenBuy, seenSell, seenAmount bool
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if m := buyPattern.FindStringSubmatch(line); m != nil {
			if seenBuy {
				return defaultTerms(), ErrDuplicateBuyPrice
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return defaultTerms(), ErrNumberTooLarge
			}
			t.BuyPrice, seenBuy = n, true
			continue
		}
		if m := sellPattern.FindStringSubmatch(line); m != nil {
			if seenSell {
				return defaultTerms(), ErrDuplicateSellPrice
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return defaultTerms(), ErrNumberTooLarge
			}
			t.SellPrice, seenSell = n, true
			continue
		}
		if m := amountPattern.FindStringSubmatch(line); m != nil {
			if seenAmount {
				return defaultTerms(), ErrDuplicateAmount
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return defaultTerms(), ErrNumberTooLarge
			}
			t.Amount, seenAmount = n, true
		}
	}
	if !seenBuy && !seenSell {
		return defaultTerms(), ErrNoPrice
	}
	if t.Amount < 1 {
		return defaultTerms(), ErrInvalidAmount
	}
	return t, nil
}

// Tags is the set of first-line strings that mark a sign as a shop.
type Tags map[string]struct{}

// NewTags builds a tag set.
func NewTags(tags ...string) Tags {
	out := make(Tags, len(tags))
	for _, tag := range tags {
		out[strings.TrimSpace(tag)] = struct{}{}
	}
	return out
}

// Match reports whether line is one of the tags.
func (t Tags) Match(line string) bool {
	_, ok := t[strings.TrimSpace(line)]
	return ok
}

// Tagged reports whether the sign lines start with a shop tag.
func (t Tags) Tagged(lines []string) bool {
	return len(lines) > 0 && t.Match(lines[0])
}
