package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that does not belong to the control
// tree itself.
type RenderOptions struct {
	// Title heads the page. Empty hides the heading.
	Title string
	// Query is the current serialised state, shown next to the share link.
	Query string
	// ShareURL is the absolute link reproducing the current state.
	ShareURL string
	// RuntimeURL points at the browser runtime script. Empty omits it.
	RuntimeURL string
	// SocketURL is the live session endpoint handed to the runtime.
	SocketURL string
	// Fragment renders only the control tree without the page chrome.
	Fragment bool
	// Theme supplies tokens, CSS variables and asset URLs.
	Theme *theme.RendererConfig
}
