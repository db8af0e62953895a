package api

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// StatusSnapshot is one polled read of the daemon's state. It is treated as
// immutable: callers project the fields they care about and drop it.
type StatusSnapshot struct {
	State           string          `json:"state"`
	Running         bool            `json:"running"`
	NextRunAt       string          `json:"next_run_at"`
	LastRunAt       string          `json:"last_run_at"`
	AccountsCount   int             `json:"accounts_count"`
	Accounts        []string        `json:"accounts"`
	GameOpenCount   int             `json:"game_open_count"`
	SwitchProgress  *SwitchProgress `json:"switch_progress"`
	WaitProgress    *WaitProgress   `json:"wait_progress"`
	IntervalSeconds int             `json:"interval_seconds"`
	Config          Config          `json:"config"`
}

// Config is the daemon's persisted configuration as echoed by the API.
type Config struct {
	RunIntervalSeconds  int      `json:"run_interval_seconds"`
	TimeToWait          int      `json:"time_to_wait"`
	BatchSize           int      `json:"batch_size"`
	RunOnStartup        bool     `json:"run_on_startup"`
	SwitchSteamAccounts bool     `json:"switch_steam_accounts"`
	Theme               string   `json:"theme"`
	Games               []string `json:"games"`
}

// SwitchProgress reports an account rotation in flight.
type SwitchProgress struct {
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
	Phase          string `json:"phase"`
	CurrentAccount string `json:"current_account"`
	Message        string `json:"message"`
	Detail         string `json:"detail"`
	Step           int    `json:"step"`
	StepTotal      int    `json:"step_total"`
}

// WaitProgress reports a timed wait inside the current cycle. Remaining is
// optional; when absent it is derived from Total-Elapsed.
type WaitProgress struct {
	Total     float64  `json:"total"`
	Elapsed   float64  `json:"elapsed"`
	Remaining *float64 `json:"remaining"`
	Label     string   `json:"label"`
}

// LogEvent is one line of the daemon's append-only event stream.
// Timestamp is unix seconds with fractional precision.
type LogEvent struct {
	Timestamp float64 `json:"timestamp"`
	Level     string  `json:"level"`
	Message   string  `json:"message"`
}

// LogBatch is the incremental tail response for GET /api/logs.
type LogBatch struct {
	Events []LogEvent `json:"events"`
	Latest float64    `json:"latest"`
}

// AppMeta is catalog metadata for one app id.
type AppMeta struct {
	Name         string `json:"name"`
	CapsuleImage string `json:"capsule_image"`
	HeaderImage  string `json:"header_image"`
	Icon         string `json:"icon"`
}

// Image returns the best available preview image URL.
func (m AppMeta) Image() string {
	switch {
	case m.CapsuleImage != "":
		return m.CapsuleImage
	case m.HeaderImage != "":
		return m.HeaderImage
	default:
		return m.Icon
	}
}

// SearchResult is one catalog autocomplete hit. The upstream search proxy
// has carried the app id under several key names over time; UnmarshalJSON
// folds them into AppID.
type SearchResult struct {
	AppID string
	Name  string
	Image string
	Price string
}

func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		AppID   any `json:"app_id"`
		AppIDlc any `json:"appid"`
		AppIDcc any `json:"appId"`
		AppIDuc any `json:"appID"`
		ID      any `json:"id"`
		Name    string
		Image   string
		Price   any
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, candidate := range []any{raw.AppID, raw.AppIDcc, raw.AppIDlc, raw.ID, raw.AppIDuc} {
		if id := NormalizeAppID(candidate); id != "" {
			r.AppID = id
			break
		}
	}
	r.Name = raw.Name
	r.Image = raw.Image
	r.Price = stringValue(raw.Price)
	return nil
}

var appIDPattern = regexp.MustCompile(`(\d{3,})`)

// NormalizeAppID reduces an id of any wire type (string, number, padded
// text) to the canonical digit form, or "" when no id is present.
func NormalizeAppID(value any) string {
	if value == nil {
		return ""
	}
	text := stringValue(value)
	if match := appIDPattern.FindString(text); match != "" {
		return match
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses the daemon's timestamp strings, which may or may not
// carry a timezone. Naive timestamps are taken as local time.
func ParseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts[:2] {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range timeLayouts[2:] {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
