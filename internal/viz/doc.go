// Package viz provides a terminal view of a running pendulum.
//
// The view is a Bubble Tea model around one simulation:
//
//   - [Model]: live view with a braille rendering, a bounded trail of the
//     outer bob and an energy sparkline
//   - [Canvas]: braille pixel canvas
//   - [Picker]: preset menu that starts a [Model]
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	R         - Reset to the starting state
//	G/Enter   - Grab or release the selected bob
//	Left/Right- Turn the held bob
//	Tab       - Select bob
//	T         - Cycle themes
//	?         - Show help overlay
//
// A held bob is frozen in place; releasing it throws it with the angular
// velocity of the last few pointer or key movements.
package viz
