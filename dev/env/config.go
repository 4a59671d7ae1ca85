package devenv

// LiveSiteConfig points tests at a real account, it lives at
// <dev_state>/learnedleague.json5 and is never committed.
type LiveSiteConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Season   int    `json:"season"`
	Rundle   string `json:"rundle"`
}
