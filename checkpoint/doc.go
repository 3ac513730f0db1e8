// Package checkpoint persists the search position.
//
// A State records where the next chunk begins and how many results precede it.
// Saves go through a temporary file in the same directory, are fsynced and then
// renamed over the live file, so a reader sees either the previous record or the
// new one in full. Load treats anything it cannot fully validate as corrupt; it
// never guesses a recovery point.
//
// Lock guards a state file against a second process scanning the same range.
package checkpoint
