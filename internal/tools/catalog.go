package tools

// DefaultCatalog returns every Slack tool in the order they are advertised.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		newTool("slack_list_channels", "List public channels in the workspace", listChannels),
		newTool("slack_post_message", "Post a new message to a Slack channel", postMessage),
		newTool("slack_reply_to_thread", "Reply to a specific message thread in Slack", replyToThread),
		newTool("slack_get_channel_history", "Get recent messages from a channel", channelHistory),
		newTool("slack_get_thread_replies", "Get all replies in a message thread", threadReplies),
		newTool("slack_join_channel", "Join a public channel", joinChannel),
		newTool("slack_create_channel", "Create a new channel", createChannel),
		newTool("slack_rename_channel", "Rename an existing channel", renameChannel),
		newTool("slack_list_dms", "List direct message conversations", listDMs),
		newTool("slack_get_dm_history", "Get recent messages from the direct message conversation with a user", dmHistory),
		newTool("slack_list_users", "List users in the workspace", listUsers),
		newTool("slack_find_user", "Find users by exact email or by a fragment of their handle, name or email", findUser),
		newTool("slack_get_user_profile", "Get detailed profile information for a user", userProfile),
		newTool("slack_open_dm", "Open or reuse a direct message conversation with a user", openDM),
		newTool("slack_send_dm", "Send a direct message to a user", sendDM),
		newTool("slack_get_mentions", "Get recent channel messages that mention the bot user", mentions),
		newTool("slack_add_reaction", "Add a reaction emoji to a message", addReaction),
		newTool("slack_remove_reaction", "Remove a reaction emoji from a message", removeReaction),
		newTool("slack_get_reactions", "Get the reactions on a message", getReactions),
		newTool("slack_create_canvas", "Create a canvas from markdown", createCanvas),
		newTool("slack_read_canvas", "Read a canvas's file metadata and content links", readCanvas),
		newTool("slack_edit_canvas", "Edit a canvas with markdown content", editCanvas),
		newTool("slack_delete_canvas", "Delete a canvas", deleteCanvas),
		newTool("slack_set_canvas_access", "Grant users or channels access to a canvas", setCanvasAccess),
	)
	if err != nil {
		panic(err)
	}
	return c
}
