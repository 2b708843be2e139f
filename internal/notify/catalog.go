package notify

import (
	"fmt"

	"github.com/baharkarakas/adledger/internal/models"
)

// Template describes how a notification type is rendered and kept.
// ExtraInfo templates take format params; the rest are fixed text.
type Template struct {
	Message    string
	ShouldSave bool
	ExtraInfo  bool
}

type Catalog map[models.NotificationType]Template

var DefaultCatalog = Catalog{
	models.NotifyFundsReceived: {
		Message:    "Your balance has been refilled by %s",
		ShouldSave: true,
		ExtraInfo:  true,
	},
	models.NotifyBalanceChanged: {
		Message:    "Your balance has changed by %s",
		ShouldSave: true,
		ExtraInfo:  true,
	},
	models.NotifyModerationApproved: {
		Message:    "Your distribution has been approved and sent out",
		ShouldSave: true,
	},
	models.NotifyModerationRejected: {
		Message:    "Your distribution was rejected by moderation",
		ShouldSave: false,
	},
	models.NotifyDistribution: {
		Message:    "%s\n\nSent by %s",
		ShouldSave: true,
		ExtraInfo:  true,
	},
}

// Render builds the message text. Params are ignored for fixed templates
// and when none are given.
func (c Catalog) Render(t models.NotificationType, params ...any) (string, Template, error) {
	tpl, ok := c[t]
	if !ok {
		return "", Template{}, fmt.Errorf("unknown notification type %q", t)
	}
	if tpl.ExtraInfo && len(params) > 0 {
		return fmt.Sprintf(tpl.Message, params...), tpl, nil
	}
	return tpl.Message, tpl, nil
}
