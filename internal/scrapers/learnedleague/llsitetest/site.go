// Package llsitetest serves a deterministic fake of the LearnedLeague pages
// the pipeline reads, for tests.
package llsitetest

import (
	"fmt"
	"ll-analytics/internal/db"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultUsername = "player01"
	DefaultPassword = "secret"
	sessionCookie   = "phpbb3_sid"
	sessionValue    = "valid-session"
	formToken       = "form-token-1"
)

type Player struct {
	Username    string
	LLID        int64
	DisplayName string
	Rank        int
	// LinkByName makes standings link to the profile by username, the
	// player's id is then only discoverable through the tracker.
	LinkByName bool
}

type Match struct {
	Player1   string
	Player2   string
	Score1    int
	TCA1      int
	Score2    int
	TCA2      int
	LLMatchID int64
	// Forfeit renders the first player's score as F.
	Forfeit bool
}

type Question struct {
	// Label is the category as the site prints it, ex. "AMER HIST".
	Label  string
	Text   string
	Answer string
}

type Day struct {
	Questions []Question
	Matches   []Match
}

// Site is the fake. Exported fields may be changed between runs, they are
// read on every request.
type Site struct {
	Season   int
	Rundle   string
	Username string
	Password string
	Players  []Player
	Days     map[int]*Day
	// ProfileExtraRow adds a category row with this label to every profile.
	ProfileExtraRow string

	// Fail returns a status code to answer `path` with, 0 serves it normally.
	Fail func(path string) int
	// OnRequest is called before a request is served.
	OnRequest func(path string)

	mutex    sync.Mutex
	requests []string
	server   *httptest.Server
}

// categoryLabels are the abbreviations the site prints in question headers,
// in the order of db.Categories.
var categoryLabels = []string{
	"AMER HIST", "ART", "BUS/ECON", "CLASS MUSIC", "FILM", "FOOD/DRINK",
	"GAMES/SPORT", "GEOGRAPHY", "LANGUAGE", "LIFESTYLE", "LITERATURE", "MATH",
	"POP MUSIC", "SCIENCE", "TELEVISION", "THEATRE", "WORLD HIST", "MISC",
}

// CategoryFor returns the canonical name of a label printed by the site.
func CategoryFor(label string) string {
	for i, l := range categoryLabels {
		if l == label {
			return db.Categories[i]
		}
	}
	return ""
}

// New generates a season with `players` members playing `days` match days
// in round robin order. Every match has an id.
func New(season int, rundle string, players, days int) *Site {
	site := &Site{
		Season:   season,
		Rundle:   rundle,
		Username: DefaultUsername,
		Password: DefaultPassword,
		Days:     map[int]*Day{},
	}
	for i := 0; i < players; i++ {
		site.Players = append(site.Players, Player{
			Username:    fmt.Sprintf("player%02d", i+1),
			LLID:        int64(10001 + i),
			DisplayName: fmt.Sprintf("Player %d", i+1),
			Rank:        i + 1,
		})
	}

	for d := 1; d <= days; d++ {
		day := &Day{}
		for q := 1; q <= db.QuestionsPerDay; q++ {
			label := categoryLabels[((d-1)*db.QuestionsPerDay+q-1)%len(categoryLabels)]
			day.Questions = append(day.Questions, Question{
				Label:  label,
				Text:   fmt.Sprintf("On day %d, what is the answer to question %d?", d, q),
				Answer: fmt.Sprintf("Answer %d-%d", d, q),
			})
		}
		for k, pair := range roundRobin(players, d-1) {
			p1 := site.Players[pair[0]]
			p2 := site.Players[pair[1]]
			c1 := site.correctCount(pair[0], d)
			c2 := site.correctCount(pair[1], d)
			day.Matches = append(day.Matches, Match{
				Player1:   p1.Username,
				Player2:   p2.Username,
				Score1:    c1,
				TCA1:      c1,
				Score2:    c2,
				TCA2:      c2,
				LLMatchID: int64(season*10000 + d*100 + k + 1),
			})
		}
		site.Days[d] = day
	}
	return site
}

// roundRobin pairs n players for a round using the circle method.
func roundRobin(n, round int) [][2]int {
	if n < 2 {
		return nil
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	rest := ids[1:]
	shift := round % len(rest)
	rotated := append(append([]int{}, rest[len(rest)-shift:]...), rest[:len(rest)-shift]...)
	ring := append([]int{ids[0]}, rotated...)

	var pairs [][2]int
	for i := 0; i < n/2; i++ {
		pairs = append(pairs, [2]int{ring[i], ring[n-1-i]})
	}
	return pairs
}

// Correct reports whether the player at index p got question q of day d right.
func (s *Site) Correct(p, d, q int) bool {
	return (p*7+d*3+q)%3 != 0
}

var defenseScheme = []int{0, 1, 1, 2, 2, 3}

// Defense is the number of points the player at index p assigned to question q of day d.
func (s *Site) Defense(p, d, q int) int {
	return defenseScheme[(q-1+p+d)%len(defenseScheme)]
}

func (s *Site) correctCount(p, d int) int {
	count := 0
	for q := 1; q <= db.QuestionsPerDay; q++ {
		if s.Correct(p, d, q) {
			count++
		}
	}
	return count
}

// RundlePct is the rounded percentage of members who got the question right.
func (s *Site) RundlePct(d, q int) int {
	if len(s.Players) == 0 {
		return 0
	}
	count := 0
	for p := range s.Players {
		if s.Correct(p, d, q) {
			count++
		}
	}
	return count * 100 / len(s.Players)
}

func (s *Site) LeaguePct(d, q int) int {
	return (s.RundlePct(d, q) + 50) / 2
}

// LifetimeStat is the deterministic category breakdown of a player.
func (s *Site) LifetimeStat(p, category int) (correct, total int) {
	total = 40 + category
	correct = (p*5 + category*3) % total
	return correct, total
}

func (s *Site) PlayerIndex(username string) int {
	for i, p := range s.Players {
		if p.Username == username {
			return i
		}
	}
	return -1
}

func (s *Site) Start() string {
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s.server.URL
}

func (s *Site) Close() {
	if s.server != nil {
		s.server.Close()
	}
}

// Requests returns the path and query of every request served so far.
func (s *Site) Requests() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string{}, s.requests...)
}

// CountRequests counts requests whose path and query start with prefix.
func (s *Site) CountRequests(prefix string) int {
	count := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r, prefix) {
			count++
		}
	}
	return count
}

func (s *Site) ResetRequests() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = nil
}

func (s *Site) authed(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	return err == nil && cookie.Value == sessionValue
}

func queryParts(r *http.Request) []string {
	if r.URL.RawQuery == "" {
		return nil
	}
	return strings.Split(r.URL.RawQuery, "&")
}

func (s *Site) handle(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	s.mutex.Lock()
	s.requests = append(s.requests, target)
	s.mutex.Unlock()

	if s.OnRequest != nil {
		s.OnRequest(target)
	}
	if s.Fail != nil {
		if status := s.Fail(target); status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("failure"))
			return
		}
	}

	w.Header().Set("content-type", "text/html; charset=utf-8")
	switch r.URL.Path {
	case "/ucp.php":
		s.handleUcp(w, r)
	case "/index.php":
		s.write(w, s.renderIndex(s.authed(r)))
	default:
		if !s.authed(r) {
			// logged out visitors are shown the login page with a 200
			s.write(w, renderLogin())
			return
		}
		s.write(w, s.route(r))
	}
}

func (s *Site) handleUcp(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("mode") {
	case "login":
		if r.Method != http.MethodPost {
			s.write(w, renderLogin())
			return
		}
		err := r.ParseForm()
		if err == nil &&
			r.PostForm.Get("username") == s.Username &&
			r.PostForm.Get("password") == s.Password &&
			r.PostForm.Get("form_token") == formToken {
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
			http.Redirect(w, r, "/index.php", http.StatusFound)
			return
		}
		s.write(w, renderLogin()+"<p>You have specified an incorrect password.</p>")
	case "logout":
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/index.php", http.StatusFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Site) write(w http.ResponseWriter, body string) {
	if body == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write([]byte(body))
}

func (s *Site) route(r *http.Request) string {
	parts := queryParts(r)
	switch r.URL.Path {
	case "/standings.php":
		if len(parts) == 2 && parts[0] == strconv.Itoa(s.Season) && parts[1] == s.Rundle {
			return s.renderStandings()
		}
	case "/match.php":
		if len(parts) == 1 && strings.HasPrefix(parts[0], "id=") {
			id, err := strconv.ParseInt(strings.TrimPrefix(parts[0], "id="), 10, 64)
			if err == nil {
				return s.renderMatchDetail(id)
			}
			return ""
		}
		if len(parts) < 2 || parts[0] != strconv.Itoa(s.Season) {
			return ""
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil {
			return ""
		}
		if len(parts) == 2 {
			return s.renderQuestionDay(day)
		}
		if len(parts) == 3 && parts[2] == s.Rundle {
			return s.renderRoster(day)
		}
	case "/rundlegrid.php":
		if len(parts) == 3 && parts[0] == strconv.Itoa(s.Season) && parts[2] == s.Rundle {
			day, err := strconv.Atoi(parts[1])
			if err == nil {
				return s.renderGrid(day)
			}
		}
	case "/profiles.php":
		if len(parts) >= 1 {
			return s.renderProfile(parts[0])
		}
	case "/tracker/tracker.php":
		return s.renderTracker()
	}
	return ""
}
