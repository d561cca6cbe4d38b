// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components turns render trees into styled terminal text and provides
the chrome around the conversation.

# Mount

Mount lays out one render.Tree:

	out := components.Mount(tree, components.MountOptions{
		Width: 100,
		Theme: theme,
		Chart: liveChart, // optional; built from the spec when nil
	})

Each block is drawn independently. A block that panics is replaced by a
short notice and the rest of the message still shows. Charts are attached
only after the surrounding layout has fixed their width.

# Chrome

  - Header: title and subtitle
  - StatusBar: backend URL, health state, key hints
  - Help: the key reference, rendered as markdown with glamour
  - Thinking: the spinner shown in a pending reply
*/
package components
