// Package profiles supplies one policy.Engine per environment the original
// agentdojo suites target (banking, workspace, travel, slack/messaging),
// restoring the environment-specific rule sets the distilled spec only
// gestures at ("Engines are provided per environment"). Each is built from
// basic.Engine plus glob rules grounded on the shape of
// camel.pipeline_elements.security_policies.agentdojo_security_policies
// (make_trusted_fields_policy: deny unless named fields are trusted).
package profiles

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy"
	"github.com/jbhoffman613/camel-prompt-injection/internal/policy/basic"
)

// Banking denies any money-movement call unless the recipient and amount
// fields are both trusted (i.e. not influenced by untrusted tool output),
// and lets read-only balance/statement queries through as no-side-effect.
func Banking() *basic.Engine {
	rules := []policy.Rule{
		{Pattern: "send_money", Decide: allOf(
			policy.RequireTrustedArg("recipient"),
			policy.RequireTrustedArg("amount"),
		)},
		{Pattern: "schedule_transaction", Decide: allOf(
			policy.RequireTrustedArg("recipient"),
			policy.RequireTrustedArg("amount"),
			policy.RequireTrustedArg("date"),
		)},
		{Pattern: "update_*", Decide: policy.RequireTrustedArg("value")},
	}
	noSideEffect := []string{"get_balance", "get_iban", "get_most_recent_transactions", "get_scheduled_transactions", "read_file"}
	return basic.New(rules, noSideEffect, 0, 0)
}

// Workspace covers calendar/email/drive-style tools: outbound messages and
// new events must keep recipients/attendees restricted to readers the
// payload is already cleared for, and file shares must stay public.
func Workspace() *basic.Engine {
	rules := []policy.Rule{
		{Pattern: "send_email", Decide: policy.RequireReadableBy("body", recipientsFromTo)},
		{Pattern: "create_calendar_event", Decide: policy.RequireReadableBy("description", recipientsFromParticipants)},
		{Pattern: "share_file", Decide: policy.RequirePublicArg("file_id")},
		{Pattern: "add_calendar_event_participants", Decide: policy.RequireReadableBy("event_id", recipientsFromParticipants)},
	}
	noSideEffect := []string{"search_emails", "search_calendar_events", "get_current_day", "search_files"}
	return basic.New(rules, noSideEffect, 0, 0)
}

// Travel denies bookings unless the traveler-identifying fields are
// trusted, preventing an injected itinerary from silently rebooking on
// someone else's behalf.
func Travel() *basic.Engine {
	rules := []policy.Rule{
		{Pattern: "book_*", Decide: policy.RequireTrustedArg("traveler_name")},
		{Pattern: "reserve_*", Decide: policy.RequireTrustedArg("traveler_name")},
		{Pattern: "cancel_*", Decide: policy.RequireTrustedArg("booking_id")},
	}
	noSideEffect := []string{"search_flights", "search_hotels", "get_reservation"}
	return basic.New(rules, noSideEffect, 0, 0)
}

// Slack restricts messages to readers the message body already permits,
// matching the original's messaging-suite concern that an injected prompt
// shouldn't be able to exfiltrate private channel contents to a public one.
func Slack() *basic.Engine {
	rules := []policy.Rule{
		{Pattern: "send_channel_message", Decide: policy.RequireReadableBy("body", recipientsFromChannel)},
		{Pattern: "send_direct_message", Decide: policy.RequireReadableBy("body", recipientsFromRecipient)},
		{Pattern: "invite_user_to_channel", Decide: policy.RequireTrustedArg("user")},
	}
	noSideEffect := []string{"read_channel_messages", "read_inbox", "get_channels", "get_users_in_channel"}
	return basic.New(rules, noSideEffect, 0, 0)
}
