package numwords

import "strings"

// German spells cardinal numbers in German, e.g. 125 -> "einhundertfünfundzwanzig".
//
// Numbers below one million are written as one word. Millions and
// milliards are separate nouns: 2000001 -> "zwei Millionen eins".
type German struct{}

var germanOnes = [...]string{
	"", "ein", "zwei", "drei", "vier", "fünf", "sechs", "sieben", "acht", "neun",
	"zehn", "elf", "zwölf", "dreizehn", "vierzehn", "fünfzehn", "sechzehn",
	"siebzehn", "achtzehn", "neunzehn",
}

var germanTens = [...]string{
	"", "", "zwanzig", "dreißig", "vierzig", "fünfzig", "sechzig", "siebzig", "achtzig", "neunzig",
}

type germanScale struct {
	value    int64
	singular string
	plural   string
}

var germanScales = []germanScale{
	{1_000_000_000_000, "Billion", "Billionen"},
	{1_000_000_000, "Milliarde", "Milliarden"},
	{1_000_000, "Million", "Millionen"},
}

// Cardinal implements CardinalSpeller.
func (German) Cardinal(n int64) (string, error) {
	if n == 0 {
		return "null", nil
	}
	if n < 0 {
		if n == -n {
			return "", ErrOutOfRange
		}
		words, err := German{}.Cardinal(-n)
		if err != nil {
			return "", err
		}
		return "minus " + words, nil
	}
	if n >= 1_000_000_000_000_000 {
		return "", ErrOutOfRange
	}

	var parts []string
	for _, scale := range germanScales {
		count := n / scale.value
		n %= scale.value
		if count == 0 {
			continue
		}
		if count == 1 {
			parts = append(parts, "eine "+scale.singular)
		} else {
			parts = append(parts, germanBelowMillion(count, false)+" "+scale.plural)
		}
	}

	if n > 0 {
		parts = append(parts, germanBelowMillion(n, true))
	}

	return strings.Join(parts, " "), nil
}

// germanBelowMillion spells 1..999999 as one word. final selects "eins"
// over "ein" when the number ends in a bare one.
func germanBelowMillion(n int64, final bool) string {
	var b strings.Builder

	if thousands := n / 1000; thousands > 0 {
		b.WriteString(germanBelowThousand(thousands, false))
		b.WriteString("tausend")
	}
	if rest := n % 1000; rest > 0 {
		b.WriteString(germanBelowThousand(rest, final))
	}

	return b.String()
}

func germanBelowThousand(n int64, final bool) string {
	var b strings.Builder

	if hundreds := n / 100; hundreds > 0 {
		b.WriteString(germanOnes[hundreds])
		b.WriteString("hundert")
	}

	rest := n % 100
	switch {
	case rest == 0:
	case rest == 1 && final:
		b.WriteString("eins")
	case rest < 20:
		b.WriteString(germanOnes[rest])
	default:
		if ones := rest % 10; ones > 0 {
			b.WriteString(germanOnes[ones])
			b.WriteString("und")
		}
		b.WriteString(germanTens[rest/10])
	}

	return b.String()
}
