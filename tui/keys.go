package tui

// Key bindings reference:
//
// Global:
//   ctrl+c    Quit the application
//
// Splash screen:
//   any key   Skip to compose
//
// Compose screen:
//   enter     Parse the line and preview it
//   up/down   Load the previous/next preset
//   esc       Clear the line
//   ?         Toggle syntax help (empty line only)
//
// Preview screen:
//   space/p   Pause or resume
//   r         Restart from the first frame
//   esc/q     Back to compose (quit when started with preview)
