package views

import (
	"strings"

	"github.com/craftmarkt/craftmarkt/app/models"
)

// DetectDevice classifies a user agent into mobile, tablet or desktop.
// Tablets are checked first because most tablet agents also contain mobile
// markers; Android agents without "mobile" are tablets by convention.
func DetectDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)

	for _, sig := range []string{"ipad", "tablet", "kindle", "silk/", "playbook"} {
		if strings.Contains(ua, sig) {
			return models.DEVICE_TABLET
		}
	}
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		return models.DEVICE_TABLET
	}

	for _, sig := range []string{"mobi", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini"} {
		if strings.Contains(ua, sig) {
			return models.DEVICE_MOBILE
		}
	}

	return models.DEVICE_DESKTOP
}
