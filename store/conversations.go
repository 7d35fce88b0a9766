package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/wrenhq/wren/model"
)

// groupConversations folds the viewer's messages, already sorted newest
// first, into one summary per partner. The first message seen for a partner
// is the conversation's last message, so result order follows last-message
// time descending; equal timestamps keep the scan order the caller
// established (insertion id as secondary sort key upstream). Unread counts
// only consider partner->viewer messages.
//
// The partner of a message depends on which side the viewer is: sender when
// the viewer received it, receiver when the viewer sent it. Both directions
// are resolved here, nowhere else.
func groupConversations(viewerID primitive.ObjectID, messages []model.Message) []model.Conversation {
	var order []primitive.ObjectID
	byPartner := map[primitive.ObjectID]*model.Conversation{}

	for i := range messages {
		msg := messages[i]
		partnerID := msg.PartnerID(viewerID)

		conv, seen := byPartner[partnerID]
		if !seen {
			// User starts as a bare id; the populate step fills in the rest.
			conv = &model.Conversation{
				User:        model.AuthorSummary{ID: partnerID},
				LastMessage: &msg,
			}
			byPartner[partnerID] = conv
			order = append(order, partnerID)
		}
		if msg.SenderID == partnerID && msg.ReceiverID == viewerID && !msg.Read {
			conv.UnreadCount++
		}
	}

	out := make([]model.Conversation, 0, len(order))
	for _, partnerID := range order {
		out = append(out, *byPartner[partnerID])
	}
	return out
}
