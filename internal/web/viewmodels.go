package web

import (
	"time"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/model"
)

const (
	tabMatches   = "matches"
	tabBlacklist = "blacklist"
	tabLive      = "live"
	tabHelp      = "help"
)

type BaseView struct {
	Title       string
	Flash       string
	FlashKind   string
	ActiveTab   string
	AuthEnabled bool
	Settings    SettingsFormView
	SearchForm  SearchFormView
}

type SettingsFormView struct {
	APIKey     string
	Region     model.Region
	Regions    []RegionOption
	Configured bool
}

type RegionOption struct {
	Value    model.Region
	Label    string
	Selected bool
}

type SearchFormView struct {
	Name     string
	Tag      string
	Remember bool
}

type DashboardView struct {
	BaseView
	Search    SearchView
	Blacklist BlacklistView
	Live      LiveView
	Help      HelpView
}

type LoginView struct {
	BaseView
	Error string
}

type SearchView struct {
	Query     SearchFormView
	Searched  bool
	Error     string
	ErrorKind string
	Summoner  *model.Summoner
	Entry     *model.BlacklistEntry
	Matches   []MatchLink
	ReturnTo  string
}

type MatchLink struct {
	ID        string
	DetailURL string
}

type MatchDetailView struct {
	Match    model.MatchSummary
	Blue     []PlayerRowView
	Red      []PlayerRowView
	SelfID   string
	ReturnTo string
	Error    string
}

type PlayerRowView struct {
	Player   model.MatchParticipant
	Entry    *model.BlacklistEntry
	IsSelf   bool
	ReturnTo string
}

type BlacklistView struct {
	Query      string
	Entries    []model.BlacklistEntry
	Total      int
	Error      string
	ReturnTo   string
	Page       int
	TotalPages int
	Pages      []int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type LiveView struct {
	Name           string
	Tag            string
	Auto           bool
	RefreshSeconds int
	CheckURL       string
	Checked        bool
	Error          string
	ErrorKind      string
	Report         blacklist.LiveReport
	Blue           []model.LivePlayer
	Red            []model.LivePlayer
	CheckedAt      time.Time
	Configured     bool
}

type HelpView struct {
	RefreshSeconds int
}
