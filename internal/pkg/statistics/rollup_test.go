package statistics

import (
	"testing"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/stretchr/testify/assert"
)

func TestDeltaForView(t *testing.T) {
	e := &models.ViewEvent{VendorID: 3, ViewType: models.VIEW_TYPE_SEARCH, DeviceType: models.DEVICE_MOBILE}

	d := DeltaForView(e)
	assert.Equal(t, uint(3), d.VendorID)
	assert.NotEmpty(t, d.StatDate)
	assert.Equal(t, int64(1), d.Views)
	assert.Equal(t, int64(1), d.SearchViews)
	assert.Equal(t, int64(1), d.MobileViews)
	assert.Zero(t, d.DirectViews)
	assert.Zero(t, d.DesktopViews)
	assert.Zero(t, d.QualifiedViews)
}

func TestDeltaForViewDefaultsToDirectDesktop(t *testing.T) {
	d := DeltaForView(&models.ViewEvent{VendorID: 1})
	assert.Equal(t, int64(1), d.DirectViews)
	assert.Equal(t, int64(1), d.DesktopViews)
}

func TestDeltaForQualified(t *testing.T) {
	d := DeltaForQualified(&models.ViewEvent{VendorID: 2, ClickedContact: true})
	assert.Equal(t, int64(1), d.QualifiedViews)
	assert.Equal(t, int64(1), d.ContactClicks)
	assert.Zero(t, d.Views)

	d = DeltaForQualified(&models.ViewEvent{VendorID: 2})
	assert.Zero(t, d.ContactClicks)
}

func TestDeltaForCharge(t *testing.T) {
	d := DeltaForCharge(&models.ViewEvent{VendorID: 2}, 10)
	assert.Equal(t, 10.0, d.CreditsSpent)
	assert.Zero(t, d.Views)
	assert.Zero(t, d.QualifiedViews)
}
