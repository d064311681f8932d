package web

import (
	"errors"
	"math"
	"net"
	"net/url"
	"strconv"

	"lol-blacklist/internal/blacklist"
	"lol-blacklist/internal/model"
	"lol-blacklist/internal/riot"
)

const blacklistPageSize = 25

// userMessage turns a lookup error into the text shown on the page, and the
// alert style it is shown with.
func userMessage(err error) (string, string) {
	var notFound *blacklist.SummonerNotFoundError
	var netErr net.Error
	switch {
	case errors.Is(err, blacklist.ErrNoAPIKey):
		return "Please set up your API key in the sidebar first", "warning"
	case errors.Is(err, model.ErrEmptyGameName):
		return "Please enter a summoner name", "error"
	case errors.Is(err, riot.ErrUnauthorized):
		return "Your Riot API key is invalid or expired. Development keys expire every 24 hours.", "error"
	case errors.As(err, &notFound):
		return notFound.Error(), "error"
	case errors.Is(err, blacklist.ErrNoMatches):
		return "No matches found. This might be because of API limitations or the account has no recent matches.", "warning"
	case errors.Is(err, riot.ErrRateLimited):
		return "The Riot API rate limit was reached. Wait a moment and try again.", "warning"
	case errors.As(err, &netErr):
		return "Could not reach the Riot API. Check your connection and try again.", "error"
	}
	return "Error: " + err.Error(), "error"
}

func buildBlacklistView(entries []model.BlacklistEntry, page int, pageSize int, query string) BlacklistView {
	if page < 1 {
		page = 1
	}
	total := len(entries)
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	view := BlacklistView{
		Query:      query,
		Entries:    entries[start:end],
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		ReturnTo:   blacklistReturnTo(query, page),
	}
	if totalPages > 1 {
		view.Pages = make([]int, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			view.Pages = append(view.Pages, i)
		}
	}
	view.HasPrev = page > 1
	view.HasNext = totalPages > 0 && page < totalPages
	if view.HasPrev {
		view.PrevPage = page - 1
	}
	if view.HasNext {
		view.NextPage = page + 1
	}
	return view
}

func blacklistReturnTo(query string, page int) string {
	values := url.Values{"tab": {tabBlacklist}}
	if query != "" {
		values.Set("q", query)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return "/?" + values.Encode()
}
