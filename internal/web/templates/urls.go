// Package templates holds the templ components that make up the UI.
// Run `templ generate` after editing a .templ file.
package templates

import "net/url"

// ToggleURL is where the summary button posts to.
func ToggleURL(viewID, key string) string {
	return "/views/" + url.PathEscape(viewID) + "/toggle?key=" + url.QueryEscape(key)
}

// TableURL is the fragment URL a loading placeholder fetches.
func TableURL(viewID, variant string) string {
	return "/views/" + url.PathEscape(viewID) + "/table?variant=" + url.QueryEscape(variant)
}

// UnmountURL is where the page's beacon reports that it went away.
func UnmountURL(viewID string) string {
	return "/views/" + url.PathEscape(viewID) + "/unmount"
}
