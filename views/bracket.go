package views

import (
	"context"
	"fmt"
	"io"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
	"github.com/a-h/templ"
)

const bracketStyle = `
body{font-family:system-ui,sans-serif;margin:2rem;background:#f6f7f9}
.rounds{display:flex;gap:2rem;align-items:center}
.round{display:flex;flex-direction:column;gap:1rem;min-width:14rem}
.match{background:#fff;border:1px solid #d5d9e0;border-radius:6px;padding:.5rem}
.match h3{font-size:.75rem;margin:0 0 .25rem;color:#667}
.slot{display:flex;justify-content:space-between;padding:.15rem 0}
.winner{font-weight:600}.loser{color:#889}.bye,.pending{color:#aab;font-style:italic}
`

// htmlWriter keeps the first write error so the markup can be written
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// BracketPage renders the read only bracket of a tournament, one column per
// round.
func BracketPage(tournament *bracket.Tournament, matches []bracket.Match) templ.Component {
	data := PrepareBracketData(matches)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(tournament.Name)
		h.raw(`</title><style>`)
		h.raw(bracketStyle)
		h.raw(`</style></head><body><h1>`)
		h.text(tournament.Name)
		h.raw(`</h1><p class="status">`)
		h.text(string(tournament.Status))
		h.raw(`</p>`)

		if user := GetUser(ctx); user != nil {
			h.raw(`<p class="user">Signed in as `)
			h.text(user.Username)
			h.raw(`</p>`)
		}

		if data.Champion != nil {
			h.raw(`<p class="champion">Champion: `)
			h.text(data.Champion.DisplayName())
			h.raw(`</p>`)
		}

		if len(data.RoundNums) == 0 {
			h.raw(`<p>The bracket has not been generated yet.</p>`)
		}

		h.raw(`<div class="rounds">`)
		for _, r := range data.RoundNums {
			h.raw(`<section class="round"><h2>`)
			h.text(data.Labels[r])
			h.raw(`</h2>`)
			for _, m := range data.Rounds[r] {
				renderMatch(h, m)
			}
			h.raw(`</section>`)
		}
		h.raw(`</div></body></html>`)

		return h.err
	})
}

func renderMatch(h *htmlWriter, m bracket.Match) {
	h.printf(`<div class="match" id="match-%d"><h3>`, m.Number)
	h.text(m.Name)
	h.raw(` · `)
	h.text(m.StartTime.Format("Jan 2"))
	h.raw(`</h3>`)

	scores := [2]*int{m.Team1Score, m.Team2Score}
	for i, p := range m.Participants {
		h.printf(`<div class="%s"><span>`, slotClass(p))
		h.text(p.DisplayName())
		h.raw(`</span><span>`)
		h.text(scoreText(scores[i]))
		if p.Result != nil {
			h.raw(` `)
			h.text(string(*p.Result))
		}
		h.raw(`</span></div>`)
	}
	h.raw(`</div>`)
}
