package sentiment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Lexicon maps lower-case words to signed weights.
type Lexicon map[string]float64

// negators flip the weight of the word that follows them.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true,
	"don't": true, "doesn't": true, "didn't": true, "can't": true, "won't": true,
}

// intensifiers scale the weight of the word that follows them.
var intensifiers = map[string]float64{
	"very": 1.5, "really": 1.4, "so": 1.3, "extremely": 1.8, "quite": 1.2,
	"slightly": 0.6, "somewhat": 0.7,
}

// DefaultLexicon returns the built-in word list.
func DefaultLexicon() Lexicon {
	return Lexicon{
		"good": 2, "great": 3, "excellent": 3, "amazing": 3, "awesome": 3,
		"love": 3, "loved": 3, "like": 1.5, "liked": 1.5, "nice": 2,
		"happy": 2.5, "glad": 2, "wonderful": 3, "fantastic": 3, "best": 3,
		"fun": 2, "enjoy": 2, "enjoyed": 2, "beautiful": 2.5, "perfect": 3,
		"pleasant": 2, "brilliant": 3, "recommend": 2, "fast": 1, "easy": 1.5,
		"bad": -2.5, "terrible": -3, "awful": -3, "horrible": -3, "worst": -3,
		"hate": -3, "hated": -3, "dislike": -2, "poor": -2, "sad": -2,
		"boring": -2, "ugly": -2.5, "slow": -1, "broken": -2, "angry": -2.5,
		"annoying": -2, "disappointing": -2.5, "disappointed": -2.5,
		"useless": -2.5, "wrong": -1.5, "fail": -2, "failed": -2, "hard": -1,
	}
}

// ReadLexicon parses "word weight" lines; blank lines and lines starting with
// # are skipped.
func ReadLexicon(r io.Reader) (Lexicon, error) {
	lex := Lexicon{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"word weight\", got %q", line, text)
		}
		w, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		lex[strings.ToLower(fields[0])] = w
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lex) == 0 {
		return nil, fmt.Errorf("lexicon is empty")
	}
	return lex, nil
}

// LoadLexicon reads a lexicon file.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLexicon(f)
}

// Score sums word weights, applying negation and intensifiers to the next
// scored word. It also returns how many words carried a weight.
func (l Lexicon) Score(text string) (total float64, hits int) {
	flip := false
	scale := 1.0
	for _, tok := range tokenize(text) {
		if negators[tok] {
			flip = !flip
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			scale *= f
			continue
		}
		w, ok := l[tok]
		if !ok {
			continue
		}
		w *= scale
		if flip {
			w = -w
		}
		total += w
		hits++
		flip = false
		scale = 1
	}
	return total, hits
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'')
	})
}
