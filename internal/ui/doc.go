// Package ui provides semantic text formatting for the agevault session.
//
// Formatters render content according to what it is (a path, a menu
// number, an error) rather than which colour it should have. When colours
// are available, content is colourised. When NO_COLOR is set or the
// terminal does not support colours, text decorations are used instead.
//
// # Semantic Formatters
//
//	ui.Path.Sprint("~/.agevault/notes.age")   // File paths
//	ui.Choice.Sprint("5")                     // Menu numbers
//	ui.Success.Sprint("✓")                    // Success indicators
//	ui.Error.Sprint("✗")                      // Error indicators
//	ui.Warning.Sprint("⚠")                    // Warnings
//	ui.Info.Sprint("→")                       // Hints
//	ui.Highlight.Sprint("notes")              // User values
//	ui.Muted.Sprint("default")                // De-emphasized text
//
// # Status Lines
//
// Ok, Fail, Warn and Hint prefix a message with the matching indicator so
// every outcome in the session reads the same way:
//
//	fmt.Fprintln(out, ui.Ok("File encrypted"))   // ✓ File encrypted
//
// # Color Behavior
//
// Colors are disabled when NO_COLOR is set (any value) or when fatih/color
// decides the terminal cannot show them. Without colour, Choice renders as
// [n], Highlight as 'value' and Muted as (text).
package ui
