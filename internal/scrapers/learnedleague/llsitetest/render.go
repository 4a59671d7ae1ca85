package llsitetest

import (
	"fmt"
	"html"
	"ll-analytics/internal/db"
	"strconv"
	"strings"
)

func page(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>LearnedLeague - %s</title></head>
<body><div id="main">%s</div></body></html>`, html.EscapeString(title), body)
}

func renderLogin() string {
	return page("Login", fmt.Sprintf(`<form action="/ucp.php?mode=login" method="post" id="login">
<input type="text" name="username"><input type="password" name="password">
<input type="hidden" name="form_token" value="%s">
<input type="hidden" name="creation_time" value="1700000000">
<input type="submit" name="login" value="Login"></form>`, formToken))
}

func (s *Site) renderIndex(authed bool) string {
	if authed {
		return page("Home", `<a href="/ucp.php?mode=logout">Logout</a><p>Welcome back</p>`)
	}
	return page("Home", `<a href="/ucp.php?mode=login">Login</a>`)
}

func (s *Site) profileLink(p Player) string {
	if p.LinkByName {
		return fmt.Sprintf(`<a href="/profiles.php?%s">%s</a>`, p.Username, p.Username)
	}
	return fmt.Sprintf(`<a href="/profiles.php?%d">%s</a>`, p.LLID, p.Username)
}

func (s *Site) player(username string) (Player, int) {
	i := s.PlayerIndex(username)
	if i < 0 {
		return Player{Username: username}, -1
	}
	return s.Players[i], i
}

func (s *Site) renderStandings() string {
	var b strings.Builder
	b.WriteString(`<table class="std sortable"><thead><tr><th>Rank</th><th>Player</th><th>W-L-T</th><th>Pts</th><th>MPD</th><th>TCA</th></tr></thead><tbody>`)
	for i, p := range s.Players {
		wins := len(s.Players) - p.Rank
		fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>%d-%d-%d</td><td>%d</td><td>+%d</td><td>%d</td></tr>`,
			p.Rank, s.profileLink(p), wins, p.Rank-1, 0, wins*2, i, 50+i)
	}
	b.WriteString(`</tbody></table>`)
	return page("Standings", b.String())
}

func (s *Site) renderQuestionDay(d int) string {
	day, ok := s.Days[d]
	if !ok {
		return ""
	}
	var b strings.Builder
	for q, question := range day.Questions {
		fmt.Fprintf(&b, `<div class="ind-Q20"><span class="ind-Q3">Q%d.</span> %s - %s</div>`,
			q+1, question.Label, html.EscapeString(question.Text))
		fmt.Fprintf(&b, `<div class="a-red">%s</div>`, html.EscapeString(question.Answer))
	}

	b.WriteString(`<table class="std"><tr><th>Rundle</th><th>Forf%</th>`)
	for q := 1; q <= len(day.Questions); q++ {
		fmt.Fprintf(&b, `<th>Q%d</th>`, q)
	}
	b.WriteString(`</tr>`)
	rows := []struct {
		label string
		pct   func(q int) int
	}{
		{"B_Pacific", func(q int) int { return 99 }},
		{s.Rundle, func(q int) int { return s.RundlePct(d, q) }},
		{"All", func(q int) int { return s.LeaguePct(d, q) }},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>0%%</td>`, row.label)
		for q := 1; q <= len(day.Questions); q++ {
			fmt.Fprintf(&b, `<td>%d</td>`, row.pct(q))
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)

	if self := s.PlayerIndex(s.Username); self >= 0 {
		b.WriteString(`<form id="answerhistory"><table><tr><th>Q</th><th>Your Answer</th><th>Result</th><th>Defense</th></tr>`)
		for q := 1; q <= len(day.Questions); q++ {
			class, answer := "c0", "no idea"
			if s.Correct(self, d, q) {
				class, answer = "c1", day.Questions[q-1].Answer
			}
			fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td class="%s"></td><td>%d</td></tr>`,
				q, html.EscapeString(answer), class, s.Defense(self, d, q))
		}
		b.WriteString(`</table></form>`)
	}
	return page(fmt.Sprintf("Match Day %d", d), b.String())
}

func (s *Site) renderRoster(d int) string {
	day, ok := s.Days[d]
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table class="std">`)
	for _, m := range day.Matches {
		p1, _ := s.player(m.Player1)
		p2, _ := s.player(m.Player2)
		score1 := strconv.Itoa(m.Score1)
		if m.Forfeit {
			score1 = "F"
		}
		score := fmt.Sprintf("%s(%d)&nbsp;&nbsp;%d(%d)", score1, m.TCA1, m.Score2, m.TCA2)
		if m.LLMatchID != 0 {
			score = fmt.Sprintf(`<a href="/match.php?id=%d">%s</a>`, m.LLMatchID, score)
		}
		fmt.Fprintf(&b, `<tr><td class="p1">%s</td><td class="score">%s</td><td class="p2">%s</td></tr>`,
			s.profileLink(p1), score, s.profileLink(p2))
	}
	b.WriteString(`</table>`)
	return page(fmt.Sprintf("%s Match Day %d", s.Rundle, d), b.String())
}

func (s *Site) questionHeader(b *strings.Builder, d int, first string) {
	day := s.Days[d]
	fmt.Fprintf(b, `<tr><th>%s</th>`, first)
	for q := 1; q <= len(day.Questions); q++ {
		fmt.Fprintf(b, `<th>Q%d</th>`, q)
	}
	b.WriteString(`</tr><tr class="cat"><td>Category</td>`)
	for _, question := range day.Questions {
		fmt.Fprintf(b, `<td>%s</td>`, question.Label)
	}
	b.WriteString(`</tr><tr class="pct"><td>Rundle %</td>`)
	for q := 1; q <= len(day.Questions); q++ {
		fmt.Fprintf(b, `<td>%d%%</td>`, s.RundlePct(d, q))
	}
	b.WriteString(`</tr>`)
}

func (s *Site) playerCells(b *strings.Builder, p Player, index, d int) {
	fmt.Fprintf(b, `<tr><td>%s</td>`, s.profileLink(p))
	for q := 1; q <= len(s.Days[d].Questions); q++ {
		class := "c0"
		if s.Correct(index, d, q) {
			class = "c1"
		}
		fmt.Fprintf(b, `<td class="%s">%d</td>`, class, s.Defense(index, d, q))
	}
}

func (s *Site) renderMatchDetail(id int64) string {
	for d, day := range s.Days {
		for _, m := range day.Matches {
			if m.LLMatchID != id {
				continue
			}
			p1, i1 := s.player(m.Player1)
			p2, i2 := s.player(m.Player2)
			var b strings.Builder
			b.WriteString(`<table class="matchdetail">`)
			s.questionHeader(&b, d, "")
			s.playerCells(&b, p1, i1, d)
			fmt.Fprintf(&b, `<td>%d(%d)</td></tr>`, m.Score1, m.TCA1)
			s.playerCells(&b, p2, i2, d)
			fmt.Fprintf(&b, `<td>%d(%d)</td></tr>`, m.Score2, m.TCA2)
			b.WriteString(`</table>`)
			return page(fmt.Sprintf("Match %d", id), b.String())
		}
	}
	return ""
}

func (s *Site) renderGrid(d int) string {
	if _, ok := s.Days[d]; !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table class="grid">`)
	s.questionHeader(&b, d, "Player")
	for i, p := range s.Players {
		s.playerCells(&b, p, i, d)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
	return page(fmt.Sprintf("%s Grid Day %d", s.Rundle, d), b.String())
}

func (s *Site) renderProfile(key string) string {
	index := -1
	for i, p := range s.Players {
		if strconv.FormatInt(p.LLID, 10) == key || p.Username == key {
			index = i
			break
		}
	}
	if index < 0 {
		return ""
	}
	p := s.Players[index]

	var b strings.Builder
	fmt.Fprintf(&b, `<link rel="canonical" href="/profiles.php?%d"><h1 class="namecss">%s</h1>`,
		p.LLID, html.EscapeString(p.DisplayName))
	b.WriteString(`<table class="std"><tr><th>Category</th><th>Correct</th><th>Total</th><th>Pct</th></tr>`)
	for c, name := range db.Categories {
		correct, total := s.LifetimeStat(index, c)
		fmt.Fprintf(&b, `<tr><td>%s</td><td>%d</td><td>%d</td><td>%.3f</td></tr>`,
			html.EscapeString(name), correct, total, float64(correct)/float64(total))
	}
	if s.ProfileExtraRow != "" {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>1</td><td>2</td><td>.500</td></tr>`, html.EscapeString(s.ProfileExtraRow))
	}
	b.WriteString(`</table>`)
	return page(p.Username, b.String())
}

func (s *Site) renderTracker() string {
	var b strings.Builder
	b.WriteString(`<table class="tracker"><tr><th>Player</th><th>Rundle</th></tr>`)
	for _, p := range s.Players {
		fmt.Fprintf(&b, `<tr><td><a href="/profiles.php?%d">%s</a></td><td><a href="/standings.php?%d&%s">%s</a></td></tr>`,
			p.LLID, p.Username, s.Season-1, "B_Old", "B_Old")
		fmt.Fprintf(&b, `<tr><td><a href="/profiles.php?%d">%s</a></td><td><a href="/standings.php?%d&%s">%s</a></td></tr>`,
			p.LLID, p.Username, s.Season, s.Rundle, s.Rundle)
	}
	b.WriteString(`</table>`)
	return page("Tracker", b.String())
}
