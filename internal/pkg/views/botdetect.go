package views

import "strings"

// Known crawler and tooling signatures. Matching is substring-based on the
// lowercased user agent, which catches the long tail of "FooBot/1.2" agents.
var botSignatures = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"curl/",
	"wget/",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"okhttp",
	"java/",
	"libwww-perl",
	"phantomjs",
	"headlesschrome",
	"scrapy",
	"facebookexternalhit",
	"whatsapp",
	"telegrambot",
	"pingdom",
	"uptimerobot",
	"dataprovider",
	"semrush",
	"ahrefs",
	"mj12bot",
	"dotbot",
	"petalbot",
	"bytespider",
}

// IsBot classifies a user agent as an automated client. An empty user agent
// is treated as a bot: every real browser sends one.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return true
	}
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}
	return false
}
