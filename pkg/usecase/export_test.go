package usecase

// Meaningful is exported for testing
var Meaningful = meaningful

// FilterListing is exported for testing
var FilterListing = filterListing

// ResolveKey is exported for testing
var ResolveKey = resolveKey
