// Package sanitize provides HTML sanitization for user-generated content.
// Blog posts arrive from a rich text editor as HTML; bluemonday strips
// dangerous markup (script tags, event handlers, javascript: URLs) before
// the content is forwarded upstream.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

// initPolicies builds the shared sanitization policies on first use.
func initPolicies() {
	policyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()

		// The editor expresses alignment and code blocks through classes.
		htmlPolicy.AllowAttrs("class").Globally()

		// Recipe posts use tables for ingredient lists.
		htmlPolicy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "td", "th", "colgroup", "col", "caption")
		htmlPolicy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")

		plainPolicy = bluemonday.StrictPolicy()
	})
}

// HTML sanitizes user-generated HTML, stripping dangerous elements while
// preserving safe formatting. Must be called on all user-provided HTML
// before it leaves the gateway.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return htmlPolicy.Sanitize(input)
}

// Plain strips all markup, leaving only text. Used for single-line fields
// (titles, categories) where no HTML is ever legitimate.
func Plain(input string) string {
	if input == "" {
		return ""
	}
	initPolicies()
	return plainPolicy.Sanitize(input)
}
