// Command ssm imports, exports and inspects a Magic: The Gathering
// collection stored as per-card counts keyed by Scryfall id.
//
// Collection files may be in the current CSV format or in any historical
// format that identifies cards by set, name, collector number, multiverse
// id or artist. Legacy rows are resolved against the local catalog.
package main
