package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort is the read-only activity-log interface other modules consume.
type ActivityPort interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

type activityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates an ActivityPort backed by the audit module's
// recent service.
func NewActivityAdapter(container mono.ServiceContainer) ActivityPort {
	if container == nil {
		panic("audit: ServiceContainer is nil")
	}
	return &activityAdapter{container: container}
}

// Recent returns up to limit recent activity entries.
func (a *activityAdapter) Recent(ctx context.Context, limit int) ([]Entry, error) {
	req := RecentRequest{Limit: limit}
	var resp RecentResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRecent,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	return resp.Entries, nil
}
