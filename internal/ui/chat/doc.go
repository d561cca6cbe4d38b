// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the interactive terminal view of a conversation.
//
// The model owns the input line, the scrolling transcript and the status
// bar. Questions go through the submission controller; each reply is
// rendered to a tree, mounted once per turn and cached until its width,
// focus, SQL panel or chart view changes.
//
// Keys:
//
//	enter        send the question (or return focus to the input)
//	tab          focus the next answer
//	ctrl+o       show or hide SQL
//	ctrl+y       copy SQL
//	ctrl+g       explore the chart (zoom, pan, hover)
//	1-9          toggle a chart dataset on the focused answer
//	ctrl+s       save the chart as PNG
//	ctrl+e       export the conversation
package chat
