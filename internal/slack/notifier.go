package slack

import (
	"context"
	"errors"

	"github.com/sebcun/ysws-tracker/internal/model"
)

// Notifier sends the project lifecycle messages. It satisfies
// service.Notifier.
type Notifier struct {
	client      *Client
	shipChannel string
}

func NewNotifier(client *Client, shipChannel string) *Notifier {
	return &Notifier{client: client, shipChannel: shipChannel}
}

// ProjectShipped DMs the owner and announces in the ship channel. Both sends
// are attempted even if one fails; the combined error is returned for the
// caller to log.
func (n *Notifier) ProjectShipped(ctx context.Context, project *model.Project, owner *model.User) error {
	hours := model.FormatHoursShort(project.Hours)

	dmErr := n.client.PostMessage(ctx, owner.SlackID,
		ShippedDMBlocks(project.Title, project.Description, project.DemoLink, project.RepoLink, hours))
	chanErr := n.client.PostMessage(ctx, n.shipChannel,
		ShippedChannelBlocks(project.Title, project.Description, project.DemoLink, project.RepoLink, hours))

	return errors.Join(dmErr, chanErr)
}

// ProjectRejected DMs the owner with the reviewer's reason. Rejections are
// never announced channel-wide.
func (n *Notifier) ProjectRejected(ctx context.Context, project *model.Project, owner *model.User, reason string) error {
	return n.client.PostMessage(ctx, owner.SlackID, RejectedDMBlocks(project.Title, reason))
}
