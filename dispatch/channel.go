package dispatch

import (
	"context"

	"github.com/hupe1980/recallmesh/completion"
	"github.com/hupe1980/recallmesh/core"
	"github.com/hupe1980/recallmesh/transport"
)

// ChannelExchange runs the transport exchange routine for one inbound
// message. It always retrieves hybrid with every field queryable, always
// composes client-side with the caller's grounding prompt and always records
// the inbound payload and the outbound reply as structured entries. The send
// step does not gate the outbound record: a failed send is logged and the
// reply is persisted and returned regardless.
func (d *Dispatcher) ChannelExchange(ctx context.Context, msg transport.Inbound, prompt string) (string, error) {
	if d.messenger == nil {
		return "", core.NewError(core.KindDispatch, "no transport configured")
	}

	col, err := d.mgr.Collection()
	if err != nil {
		return "", err
	}

	if _, err := d.mem.AppendStructured(ctx, core.RoleUser, msg.Payload()); err != nil {
		return "", err
	}

	req := request{col: col, preset: channelPreset, fields: d.fields}

	rows, err := col.Hybrid(ctx, msg.Content, req.hybridOptions())
	if err != nil {
		return "", err
	}

	reply, err := d.completer.CompleteGrounded(ctx, prompt, msg.Content, rows)
	if err != nil {
		d.logger.Error("Channel completion failed", "channel_id", msg.ChannelID, "error", err.Error())
		reply = completion.IssueText(err)
	}

	if err := d.messenger.Typing(ctx, msg.ChannelID); err != nil {
		d.logger.Warn("Typing indicator failed", "channel_id", msg.ChannelID, "error", err.Error())
	}

	if err := d.messenger.Send(ctx, msg.ChannelID, reply); err != nil {
		d.logger.Error("Transport send failed", "channel_id", msg.ChannelID, "error", err.Error())
	}

	outbound := map[string]any{
		"channelId": msg.ChannelID,
		"content":   reply,
	}
	if _, err := d.mem.AppendStructured(ctx, core.RoleAssistant, outbound); err != nil {
		return "", err
	}

	d.logger.Debug("Channel exchange completed", "channel_id", msg.ChannelID, "collection", col.Name())

	return reply, nil
}
