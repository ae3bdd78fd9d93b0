package game

import (
	"strings"

	"github.com/MondherWebDev/bw-server/internal/protocol"
)

// DefaultCategoryCount is the floor on how many categories a round evaluates,
// even when both players submit fewer answers.
const DefaultCategoryCount = 6

// minAnswerLetters is the shortest letter count a scoring answer may have.
const minAnswerLetters = 2

// RoundResult is the outcome of scoring one round.
type RoundResult struct {
	Host       int
	Guest      int
	Categories []CategoryResult
}

// CategoryResult is the per-category breakdown behind a round's deltas.
type CategoryResult struct {
	Host      int
	Guest     int
	Duplicate bool
}

// ScoreRound compares the two submissions category by category and returns
// the point deltas. It is a pure function of its inputs: one point per valid
// answer, with duplicates zeroing both sides when the dupZero rule is on.
// Missing indices count as empty answers.
func ScoreRound(hostAnswers, guestAnswers []string, letter string, rules protocol.RuleSet) RoundResult {
	n := len(hostAnswers)
	if len(guestAnswers) > n {
		n = len(guestAnswers)
	}
	if n < DefaultCategoryCount {
		n = DefaultCategoryCount
	}

	normLetter := NormalizeAnswer(letter)
	res := RoundResult{Categories: make([]CategoryResult, 0, n)}

	for i := 0; i < n; i++ {
		hostRaw := answerAt(hostAnswers, i)
		guestRaw := answerAt(guestAnswers, i)
		hostNorm := NormalizeAnswer(hostRaw)
		guestNorm := NormalizeAnswer(guestRaw)

		hostValid := validAnswer(hostRaw, hostNorm, normLetter, rules.RequireLetter)
		guestValid := validAnswer(guestRaw, guestNorm, normLetter, rules.RequireLetter)
		duplicate := hostValid && guestValid && hostNorm == guestNorm

		cat := CategoryResult{Duplicate: duplicate}
		if hostValid {
			cat.Host = 1
		}
		if guestValid {
			cat.Guest = 1
		}
		if duplicate && rules.DupZero {
			cat.Host, cat.Guest = 0, 0
		}

		res.Host += cat.Host
		res.Guest += cat.Guest
		res.Categories = append(res.Categories, cat)
	}
	return res
}

// NormalizeAnswer produces the canonical form used for duplicate detection
// and letter matching: trimmed, lowercased, with alef-maksura folded to yeh,
// teh-marbuta folded to heh, and every alef variant (bare or hamza-seated)
// dropped, so spellings that differ only by an unstable alef compare equal.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'ا', 'أ', 'إ', 'آ':
		case 'ى':
			b.WriteRune('ي')
		case 'ة':
			b.WriteRune('ه')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validAnswer applies the validity rule: at least two letter characters, and
// when requireLetter is on, the normalized answer must start with the
// normalized round letter.
func validAnswer(raw, norm, normLetter string, requireLetter bool) bool {
	if raw == "" {
		return false
	}
	if letterCount(raw) < minAnswerLetters {
		return false
	}
	if requireLetter && !strings.HasPrefix(norm, normLetter) {
		return false
	}
	return true
}

// letterCount counts Latin and Arabic letters, ignoring digits, spaces and
// punctuation.
func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= 'ء' && r <= 'ي') {
			n++
		}
	}
	return n
}

func answerAt(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}
