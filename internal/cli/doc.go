// Package cli implements the interactive terminal front-end of pingate.
//
// The App enrolls the single device account, unlocks it with a PIN through
// the authentication gate and manages the linked-account set once unlocked.
// A small read–eval–print loop (runREPL) dispatches commands to App methods;
// interactive input goes through the getSimpleText and getPIN seams so tests
// can script it.
package cli
