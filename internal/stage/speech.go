package stage

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseSpeech splits markup into reveal units: one unit per rune of text,
// taken from text nodes in document order. <b>/<strong> and <i>/<em> style
// the runes inside them and <br> yields a newline unit. Other tags are
// dropped but their text is kept, so the same markup always yields the
// same sequence.
func ParseSpeech(markup string) []Unit {
	var units []Unit
	bold, italic := 0, 0
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return units
		case html.TextToken:
			for _, r := range string(z.Text()) {
				units = append(units, Unit{Text: string(r), Bold: bold > 0, Italic: italic > 0})
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				bold++
			case "i", "em":
				italic++
			case "br":
				units = append(units, Unit{Text: "\n"})
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				if bold > 0 {
					bold--
				}
			case "i", "em":
				if italic > 0 {
					italic--
				}
			}
		}
	}
}

// Say replaces the coach's speech with markup and optional action buttons.
// The text is revealed progressively.
func (s *Stage) Say(markup string, ctas ...CTA) {
	units := ParseSpeech(markup)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.cancelLocked(&s.tType)
	s.vis.Speech = Speech{Units: units, CTAs: append([]CTA(nil), ctas...)}
	if len(units) > 0 {
		s.tType = s.afterLocked(s.t.Type, s.typeLocked)
	}
	s.changedLocked()
}

func (s *Stage) typeLocked() {
	s.tType = 0
	sp := &s.vis.Speech
	sp.Revealed += s.typeRate
	if sp.Revealed >= len(sp.Units) {
		sp.Revealed = len(sp.Units)
	} else {
		s.tType = s.afterLocked(s.t.Type, s.typeLocked)
	}
	s.changedLocked()
}

// RevealAll finishes the typewriter effect at once.
func (s *Stage) RevealAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed || s.vis.Speech.Done() {
		return
	}
	s.cancelLocked(&s.tType)
	s.vis.Speech.Revealed = len(s.vis.Speech.Units)
	s.changedLocked()
}
