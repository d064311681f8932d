package web

import (
	"fmt"
	"net/url"
	"strings"
)

type flash struct {
	Message string
	Kind    string
}

func flashMessage(query url.Values) flash {
	player := strings.TrimSpace(query.Get("player"))
	switch strings.TrimSpace(query.Get("notice")) {
	case "settings_saved":
		return flash{"Settings saved!", "success"}
	case "settings_session":
		return flash{"Blacklist Manager initialized!", "success"}
	case "api_key_missing":
		return flash{"Please enter your Riot API Key", "error"}
	case "settings_failed":
		return flash{"Could not save settings. Check the log for details.", "error"}
	case "blacklist_added":
		return flash{fmt.Sprintf("Added %s to blacklist", player), "success"}
	case "blacklist_duplicate":
		return flash{"Player is already in your blacklist", "warning"}
	case "blacklist_unconfirmed":
		return flash{"Tick the confirmation box to blacklist a player", "warning"}
	case "blacklist_removed":
		return flash{fmt.Sprintf("%s removed from blacklist", player), "success"}
	case "blacklist_missing":
		return flash{"Failed to remove from blacklist", "error"}
	case "imported":
		return flash{fmt.Sprintf("Imported %s, skipped %s", orZero(query.Get("added")), orZero(query.Get("skipped"))), "success"}
	case "import_invalid":
		return flash{"Invalid blacklist format. CSV must contain summoner_id, summoner_name, and reason columns", "error"}
	case "import_failed":
		return flash{"Error importing blacklist", "error"}
	}
	return flash{}
}

func orZero(value string) string {
	if strings.TrimSpace(value) == "" {
		return "0"
	}
	return value
}
